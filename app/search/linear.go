package search

import (
	"strings"
	"unicode/utf8"
)

// terms splits a query on spaces into folded terms longer than one character.
func terms(query string) []string {
	var out []string
	for _, t := range strings.Split(fold(query), " ") {
		if utf8.RuneCountInString(t) > 1 {
			out = append(out, t)
		}
	}
	return out
}

// linear scores every document per term: an equal title scores 10, a title
// containing the term 5, each occurrence in content or excerpt 1, and an
// exact tag or category 3. Documents scoring zero are dropped.
func (idx *Index) linear(query string) []hit {
	ts := terms(query)
	var hits []hit
	for i, d := range idx.docs {
		title := fold(d.Title)
		body := fold(d.Content + " " + d.Excerpt)
		tags := foldAll(d.Tags)
		categories := foldAll(d.Categories)

		score := 0
		for _, t := range ts {
			if strings.Contains(title, t) {
				if title == t {
					score += 10
				} else {
					score += 5
				}
			}
			score += strings.Count(body, t)
			if contains(tags, t) {
				score += 3
			}
			if contains(categories, t) {
				score += 3
			}
		}
		if score > 0 {
			hits = append(hits, hit{doc: i, score: float64(score)})
		}
	}
	return hits
}

func foldAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fold(s)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
