// Package normalizer turns markup-bearing text into plain text before chunking.
//
// Markup detection is a heuristic: any text holding both a '<' and a '>' is
// treated as markup, so plain text with comparison operators ("a < b > c")
// is stripped as well. Tags are matched without nesting awareness.
package normalizer

import (
	"regexp"
	"strings"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	// \s in RE2 is ASCII only; widen it to what unicode.IsSpace accepts so the
	// collapse agrees with strings.TrimSpace.
	whitespacePattern = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
)

// IsMarkup reports whether text looks like it carries tags.
func IsMarkup(text string) bool {
	return strings.Contains(text, "<") && strings.Contains(text, ">")
}

// StripMarkup replaces every tag with a space, collapses whitespace runs to a
// single space and trims the result.
func StripMarkup(text string) string {
	text = tagPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Normalize strips markup when IsMarkup holds and returns text untouched
// otherwise. Whitespace in non-markup text is preserved.
func Normalize(text string) string {
	if !IsMarkup(text) {
		return text
	}
	return StripMarkup(text)
}
