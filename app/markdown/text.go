package markdown

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText returns the visible text of an HTML fragment with whitespace collapsed.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	// Block boundaries and <br> carry no text node; keep them as word breaks.
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, pre, blockquote, td, th, div").AfterHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}
