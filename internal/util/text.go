package util

import (
	"strings"
	"unicode"
)

// SafeName keeps the first limit runes of value, replaces everything that is
// not a letter or digit with "_" and trims underscores from both ends.
func SafeName(value string, limit int) string {
	var b strings.Builder
	n := 0
	for _, r := range value {
		if n == limit {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	return strings.Trim(b.String(), "_")
}
