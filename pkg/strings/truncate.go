package strings

import (
	"strings"
)

// DefaultLineMaxLen is the width chat lines and server messages are cut to.
// It fits a small e-ink terminal.
const DefaultLineMaxLen = 72

// MinTruncateLen is the smallest maxLen SingleLine honours: one character plus "...".
const MinTruncateLen = 4

// SingleLine collapses all whitespace in s, including newlines, into single
// spaces and cuts the result to maxLen runes, ending in "..." when cut.
// Text from other players is untrusted, so control characters are dropped.
func SingleLine(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Map(func(r rune) rune {
		if (r < 0x20 && r != '\n' && r != '\t' && r != '\r') || r == 0x7f {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
