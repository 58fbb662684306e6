// Package sanitize cleans free-text values received from CRM payloads before
// they are stored.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// MaxFieldLength caps any single CRM text field.
const MaxFieldLength = 512

// StripHTML removes all HTML tags from a string.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	).Replace(result)
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Field strips markup, collapses whitespace and truncates to MaxFieldLength runes.
func Field(s string) string {
	result := whitespaceRegex.ReplaceAllString(StripHTML(s), " ")
	if utf8.RuneCountInString(result) <= MaxFieldLength {
		return result
	}
	runes := []rune(result)
	return strings.TrimSpace(string(runes[:MaxFieldLength]))
}

// FieldPtr is Field for optional values. Blank results become nil.
func FieldPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Field(*s)
	if result == "" {
		return nil
	}
	return &result
}
