package util

import (
	"strings"
	"unicode"
)

// Snippet returns a cleaned, single-line preview of s capped at maxRunes,
// with an ellipsis appended when the input was longer.
func Snippet(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 300
	}
	s = SanitizeText(s)
	s = normalizeWhitespace(s)

	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !unicode.IsPrint(r) {
			continue
		}
		out = append(out, r)
	}
	trimmed := strings.TrimSpace(string(out))
	runes := []rune(trimmed)
	if len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "..."
	}
	return trimmed
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
