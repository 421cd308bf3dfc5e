// Package match compares artist and track names the way listings from
// different services spell them.
package match

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suffixes stripped from titles before comparison.
var titleSuffixes = []string{
	" (remastered)",
	" (remaster)",
	" - remastered",
	" - remaster",
	" [remastered]",
	" (single version)",
	" (album version)",
}

// Normalize lowercases s, drops punctuation and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	for _, suffix := range titleSuffixes {
		s = strings.TrimSuffix(s, suffix)
	}

	var b strings.Builder
	lastWasSpace := true // trims leading spaces
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastWasSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Similarity returns 1 - distance/maxLen over runes: 1 for identical
// strings, 0 when either side is empty.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	lenA, lenB := len([]rune(a)), len([]rune(b))
	if lenA == 0 || lenB == 0 {
		return 0.0
	}
	return 1.0 - float64(fuzzy.LevenshteinDistance(a, b))/float64(max(lenA, lenB))
}

// NameSimilarity compares two names after normalization.
func NameSimilarity(a, b string) float64 {
	return Similarity(Normalize(a), Normalize(b))
}
