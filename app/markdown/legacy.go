package markdown

import "regexp"

type substitution struct {
	re   *regexp.Regexp
	repl string
}

// The order matters: emphasis runs before code, so markers inside code spans
// are converted too. Existing posts depend on that.
var chain = []substitution{
	{regexp.MustCompile(`(?im)^# (.*)$`), "<h1>${1}</h1>"},
	{regexp.MustCompile(`(?im)^## (.*)$`), "<h2>${1}</h2>"},
	{regexp.MustCompile(`(?im)^### (.*)$`), "<h3>${1}</h3>"},
	{regexp.MustCompile(`\*\*(.*)\*\*`), "<strong>${1}</strong>"},
	{regexp.MustCompile(`\*(.*)\*`), "<em>${1}</em>"},
	{regexp.MustCompile("```([\\s\\S]*?)```"), "<pre><code>${1}</code></pre>"},
	{regexp.MustCompile("`([^`]*)`"), "<code>${1}</code>"},
	{regexp.MustCompile(`(?im)^- (.*)$`), "<li>${1}</li>"},
}

var (
	listSpan = regexp.MustCompile(`(?s)<li>.*</li>`)
	newline  = regexp.MustCompile(`\n`)
)

// Legacy is the substitution-chain renderer. It does not escape its input.
type Legacy struct{}

// Render applies headings, bold, italic, fenced code, inline code and list
// items in that order, wraps the list span in a single <ul> and turns every
// remaining newline into <br>.
func (Legacy) Render(src string) string {
	out := src
	for _, s := range chain {
		out = s.re.ReplaceAllString(out, s.repl)
	}
	// Only the first span is wrapped; greedy matching makes it run from the
	// first <li> to the last </li>.
	if loc := listSpan.FindStringIndex(out); loc != nil {
		out = out[:loc[0]] + "<ul>" + out[loc[0]:loc[1]] + "</ul>" + out[loc[1]:]
	}
	return newline.ReplaceAllString(out, "<br>")
}
