// Package textdist provides the string-distance primitives used by the
// matching engine: Levenshtein edit distance, longest common subsequence,
// and a character-frequency similarity used as a minor blending term.
//
// The distance cores delegate to go-edlib; the wrappers pin down the
// empty-input contracts every caller relies on (both empty means identical,
// one empty means fully distant) so that all engine arithmetic stays total.
package textdist

import (
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Distance returns the minimum number of single-character insertions,
// deletions and substitutions required to transform a into b. An empty
// input costs the length of the other string.
func Distance(a, b string) int {
	if a == "" {
		return utf8.RuneCountInString(b)
	}
	if b == "" {
		return utf8.RuneCountInString(a)
	}
	return edlib.LevenshteinDistance(a, b)
}

// Similarity converts edit distance to a score in [0,1]:
// 1 - distance/max(len). Two empty strings are identical.
func Similarity(a, b string) float64 {
	maxLen := maxRuneLen(a, b)
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(Distance(a, b))/float64(maxLen)
}

// NormalizedSimilarity lower-cases and trims both inputs before comparing.
func NormalizedSimilarity(a, b string) float64 {
	return Similarity(normalize(a), normalize(b))
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func maxRuneLen(a, b string) int {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la > lb {
		return la
	}
	return lb
}
