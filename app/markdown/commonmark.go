package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// CommonMark renders with goldmark, GFM extensions and chroma highlighting.
type CommonMark struct {
	md goldmark.Markdown
}

// NewCommonMark builds a goldmark renderer using the given highlight style.
func NewCommonMark(style string) *CommonMark {
	if style == "" {
		style = "github"
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)
	return &CommonMark{md: md}
}

// Render converts src. Conversion errors only come from the writer, which is
// an in-memory buffer here, so the partial output is returned as is.
func (c *CommonMark) Render(src string) string {
	var buf bytes.Buffer
	_ = c.md.Convert([]byte(src), &buf)
	return buf.String()
}
