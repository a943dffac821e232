package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// FuzzyThreshold is the similarity above which IsCorrect accepts a near miss
// when fuzzy matching is requested.
const FuzzyThreshold = 0.8

// Normalize trims surrounding whitespace and case-folds s.
func Normalize(s string) string {
	// A Caser keeps state, so one is built per call.
	return cases.Fold().String(strings.TrimSpace(s))
}

// IsCorrect compares an answer with the secret word. Scoring always calls it
// with fuzzy=false.
func IsCorrect(answer, word string, fuzzy bool) bool {
	a, w := Normalize(answer), Normalize(word)
	if a == w {
		return true
	}
	if fuzzy {
		return Similarity(a, w) > FuzzyThreshold
	}
	return false
}

// Similarity returns 1 - editDistance/len(longer) on the normalized strings.
func Similarity(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == b {
		return 1
	}

	longer := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longer == 0 {
		return 1
	}

	dist := levenshtein.ComputeDistance(a, b)
	return float64(longer-dist) / float64(longer)
}
