package search

import (
	"html/template"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const markOpen, markClose = `<mark class="search-highlight">`, `</mark>`

// Highlight escapes text and wraps every case-insensitive occurrence of each
// query term in a mark element. Overlapping occurrences share one mark.
func Highlight(text, query string) template.HTML {
	var spans [][2]int
	for _, t := range strings.Split(query, " ") {
		if utf8.RuneCountInString(t) < 2 {
			continue
		}
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(t))
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, [2]int{loc[0], loc[1]})
		}
	}
	if len(spans) == 0 {
		return template.HTML(template.HTMLEscapeString(text))
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s[0] <= last[1] {
			last[1] = max(last[1], s[1])
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	pos := 0
	for _, s := range merged {
		b.WriteString(template.HTMLEscapeString(text[pos:s[0]]))
		b.WriteString(markOpen)
		b.WriteString(template.HTMLEscapeString(text[s[0]:s[1]]))
		b.WriteString(markClose)
		pos = s[1]
	}
	b.WriteString(template.HTMLEscapeString(text[pos:]))
	return template.HTML(b.String())
}

// Snippet shortens text to at most n characters, cutting at the last space
// when there is one, and appends an ellipsis.
func Snippet(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
