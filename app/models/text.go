package models

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

const (
	excerptLength  = 200
	wordsPerMinute = 200
)

var (
	slugStrip     = regexp.MustCompile(`[^\w\s\p{Z}-]`)
	slugSpaces    = regexp.MustCompile(`[\s\p{Z}]+`)
	slugHyphens   = regexp.MustCompile(`-+`)
	excerptMarkup = regexp.MustCompile("[#*`]")
)

// DeriveSlug turns a title into a URL-safe slug: lowercase, non-word characters
// dropped, whitespace runs replaced by a single hyphen.
func DeriveSlug(title string) string {
	s := strings.ToLower(title)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}

// Excerpt strips heading, emphasis and code markers from content and keeps the
// first 200 characters, adding an ellipsis when the content is longer.
func Excerpt(content string) string {
	plain := []rune(excerptMarkup.ReplaceAllString(content, ""))
	if len(plain) > excerptLength {
		plain = plain[:excerptLength]
	}
	out := string(plain)
	if len([]rune(content)) > excerptLength {
		out += "..."
	}
	return out
}

// WordCount counts whitespace separated words, treating every CJK character as a word.
func WordCount(content string) int {
	count := 0
	inWord := false
	for _, r := range content {
		switch {
		case unicode.IsSpace(r):
			inWord = false
		case isCJK(r):
			count++
			inWord = false
		default:
			if !inWord {
				count++
				inWord = true
			}
		}
	}
	return count
}

// ReadingTime returns the estimated minutes needed to read content, at least one.
func ReadingTime(content string) int {
	minutes := int(math.Ceil(float64(WordCount(content)) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
