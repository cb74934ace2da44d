// Package markdown converts post sources to HTML.
//
// Two engines are available. Legacy reproduces the ordered substitution chain
// older posts were written against, so stored content renders byte-for-byte as
// before. CommonMark is a full goldmark pipeline for new content.
package markdown

import (
	"fmt"
	"strings"
)

// Engine names accepted by New.
const (
	EngineLegacy     = "legacy"
	EngineCommonMark = "commonmark"
)

// Renderer converts Markdown source to HTML.
type Renderer interface {
	Render(src string) string
}

// New returns the renderer for the named engine. style selects the code
// highlighting theme and is ignored by the legacy engine.
func New(engine, style string) (Renderer, error) {
	switch strings.ToLower(engine) {
	case "", EngineLegacy:
		return Legacy{}, nil
	case EngineCommonMark:
		return NewCommonMark(style), nil
	default:
		return nil, fmt.Errorf("unknown markdown engine %q: must be one of legacy, commonmark", engine)
	}
}
