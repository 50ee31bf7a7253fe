package textdist

import (
	"github.com/hbollon/go-edlib"
)

// LCSLength returns the length of the longest common subsequence of a and b.
func LCSLength(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return edlib.LCS(a, b)
}

// LCSString returns the backtracked longest common subsequence itself.
func LCSString(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	s, err := edlib.LCSBacktrack(a, b)
	if err != nil {
		return ""
	}
	return s
}

// LCSSimilarity returns lcsLength/max(len), 1.0 when both inputs are empty.
func LCSSimilarity(a, b string) float64 {
	maxLen := maxRuneLen(a, b)
	if maxLen == 0 {
		return 1.0
	}
	return float64(LCSLength(a, b)) / float64(maxLen)
}

// NormalizedLCSSimilarity lower-cases and trims both inputs first.
func NormalizedLCSSimilarity(a, b string) float64 {
	return LCSSimilarity(normalize(a), normalize(b))
}

// CharFrequencySimilarity compares byte-frequency histograms:
// sum(min(freqA, freqB)) / sum(max(freqA, freqB)). Both empty scores 1.0.
// It ignores character order entirely, so it is only useful as a minor
// blending term next to order-aware measures.
func CharFrequencySimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}

	var freqA, freqB [256]int
	for i := 0; i < len(a); i++ {
		freqA[a[i]]++
	}
	for i := 0; i < len(b); i++ {
		freqB[b[i]]++
	}

	common, total := 0, 0
	for i := 0; i < 256; i++ {
		if freqA[i] < freqB[i] {
			common += freqA[i]
			total += freqB[i]
		} else {
			common += freqB[i]
			total += freqA[i]
		}
	}

	if total == 0 {
		return 1.0
	}
	return float64(common) / float64(total)
}

// BlendedLCSSimilarity combines subsequence similarity with character
// frequency similarity, weighted toward the order-aware LCS measure.
func BlendedLCSSimilarity(a, b string) float64 {
	return LCSSimilarity(a, b)*0.7 + CharFrequencySimilarity(a, b)*0.3
}
