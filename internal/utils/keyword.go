package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NormalizeKeyword prepares user input for searching and persisting.
// Full-width forms are folded, the text is NFC-composed (so decomposed
// Hangul from some IMEs matches composed input) and runs of whitespace
// collapse to single spaces.
func NormalizeKeyword(s string) string {
	s = width.Fold.String(s)
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
