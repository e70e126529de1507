// Package strings holds string helpers shared by the CLI output code.
package strings

import (
	"strings"
)

// DefaultCellWidth is the widest a table cell gets before it is truncated.
const DefaultCellWidth = 100

// minTruncateLen leaves room for one character plus "...".
const minTruncateLen = 4

// Truncate flattens s to a single line, collapsing runs of whitespace, and
// shortens it to maxLen runes with a trailing "..." when it is longer.
func Truncate(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
