// Package sanitize strips unsafe characters from free-text input before it
// reaches external services or prompt templates.
package sanitize

import "strings"

// DefaultMaxLength is the truncation limit applied to general-purpose fields.
const DefaultMaxLength = 1000

// EmailMaxLength is the RFC 5321 limit used for address-sized fields.
const EmailMaxLength = 254

// Sanitize removes the characters < > " ' \ from text and truncates the
// remainder to maxLength runes. Empty input yields empty output; the function
// never fails.
func Sanitize(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '<', '>', '"', '\'', '\\':
			continue
		}
		b.WriteRune(r)
	}

	out := b.String()
	if n := len([]rune(out)); n > maxLength {
		out = string([]rune(out)[:maxLength])
	}

	return strings.TrimSpace(out)
}
