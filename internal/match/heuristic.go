package match

import (
	"strings"

	"github.com/surgebase/porter2"

	"github.com/emreeduymaz/self-healing-ios/internal/textdist"
)

// elementKeywords are common UI element name tokens. Two strings sharing a
// keyword stem (the first three characters) earn a small bonus, because
// renamed locators usually keep their element-kind token.
var elementKeywords = []string{"button", "field", "text", "image", "label", "view", "screen"}

const keywordStemLen = 3

// HeuristicMatcher produces a composite similarity that is more forgiving
// of near-misses (typos, truncation, abbreviation) than raw edit distance.
// Locator identifiers mutate in structured ways, mostly dropped trailing
// characters, renamed prefixes and abbreviated tokens, and the bonus terms
// target exactly those mutations.
type HeuristicMatcher struct {
	abbreviations AbbreviationDictionary
}

// NewHeuristicMatcher creates a matcher with the given abbreviation
// dictionary. A nil dictionary disables abbreviation expansion.
func NewHeuristicMatcher(dict AbbreviationDictionary) *HeuristicMatcher {
	return &HeuristicMatcher{abbreviations: dict}
}

// EnhancedSimilarity scores two strings in [0,1] by combining edit
// distance, subsequence similarity, substring containment, bigram overlap,
// abbreviation hints and a length adjustment.
func (m *HeuristicMatcher) EnhancedSimilarity(a, b string) float64 {
	n1 := normalize(a)
	n2 := normalize(b)

	if n1 == n2 {
		return 1.0
	}
	if n1 == "" || n2 == "" {
		return 0.0
	}

	levSim := textdist.Similarity(n1, n2)
	lcsSim := textdist.LCSSimilarity(n1, n2)
	substring := m.substringBonus(n1, n2)
	abbreviation := m.abbreviationBonus(n1, n2)
	lengthAdj := lengthAdjustment(n1, n2)

	// Substring containment carries the most weight: it is the strongest
	// signal for truncated or extended identifiers.
	base := levSim*0.3 + lcsSim*0.2 + substring*0.5

	return clamp01(base + abbreviation + lengthAdj)
}

// DynamicThreshold computes the per-pair acceptance bar. The bar tightens
// as strings grow longer and less structurally related, and relaxes
// sharply for near-identical or containment-related pairs. That is what
// lets "login_submit_butto" match "login_submit_button".
func (m *HeuristicMatcher) DynamicThreshold(a, b string, baseThreshold float64) float64 {
	n1 := normalize(a)
	n2 := normalize(b)

	minLen := min(len(n1), len(n2))
	maxLen := max(len(n1), len(n2))
	lengthDiff := maxLen - minLen

	if lengthDiff <= 3 && minLen >= 10 {
		return 0.15
	}

	shorter, longer := orderByLength(n1, n2)
	if strings.Contains(longer, shorter) && len(shorter) >= 5 {
		return 0.20
	}

	if minLen >= 8 && (strings.HasPrefix(longer, shorter) || strings.HasPrefix(shorter, longer)) {
		return 0.25
	}

	switch {
	case minLen <= 3:
		return maxF(0.15, baseThreshold-0.5)
	case minLen <= 6:
		return maxF(0.25, baseThreshold-0.4)
	case maxLen <= 15:
		return maxF(0.30, baseThreshold-0.3)
	}

	return maxF(0.35, baseThreshold-0.2)
}

// substringBonus rewards containment, long shared character runs and
// bigram overlap. Capped at 0.6.
func (m *HeuristicMatcher) substringBonus(n1, n2 string) float64 {
	bonus := 0.0

	shorter, longer := orderByLength(n1, n2)
	if strings.Contains(longer, shorter) {
		coverage := float64(len(shorter)) / float64(len(longer))
		bonus += coverage * 0.5

		if strings.HasPrefix(longer, shorter) {
			bonus += 0.3
		}
		if strings.HasSuffix(longer, shorter) {
			bonus += 0.25
		}
	}

	// Near-equal lengths with a long shared run: the classic trailing-typo
	// shape.
	lengthDiff := abs(len(n1) - len(n2))
	maxLen := max(len(n1), len(n2))
	if lengthDiff <= 3 && min(len(n1), len(n2)) >= 8 {
		ratio := float64(longestCommonRun(n1, n2)) / float64(maxLen)
		if ratio >= 0.75 {
			bonus += 0.5
		} else if ratio >= 0.6 {
			bonus += 0.3
		}
	}

	if ratio := float64(longestCommonRun(n1, n2)) / float64(maxLen); ratio >= 0.85 {
		bonus += 0.4
	}

	bonus += bigramOverlapBonus(n1, n2)

	return minF(bonus, 0.6)
}

// longestCommonRun returns the length of the longest common substring,
// found by a brute-force scan. Inputs are short identifiers, so the
// quadratic cost is irrelevant.
func longestCommonRun(a, b string) int {
	best := 0
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			run := 0
			for i+run < len(a) && j+run < len(b) && a[i+run] == b[j+run] {
				run++
			}
			if run > best {
				best = run
			}
		}
	}
	return best
}

// bigramOverlapBonus scores shared 2-gram sets, scaled to at most 0.15.
func bigramOverlapBonus(a, b string) float64 {
	gramsA := bigrams(a)
	gramsB := bigrams(b)
	if len(gramsA) == 0 || len(gramsB) == 0 {
		return 0.0
	}

	common := 0
	for g := range gramsA {
		if gramsB[g] {
			common++
		}
	}

	ratio := float64(common) / float64(max(len(gramsA), len(gramsB)))
	return ratio * 0.15
}

func bigrams(s string) map[string]bool {
	grams := make(map[string]bool)
	for i := 0; i+2 <= len(s); i++ {
		grams[s[i:i+2]] = true
	}
	return grams
}

// abbreviationBonus combines dictionary expansion hits with shared element
// keyword stems. Capped at 0.3.
func (m *HeuristicMatcher) abbreviationBonus(n1, n2 string) float64 {
	bonus := m.expansionBonus(n1, n2) + m.expansionBonus(n2, n1)
	bonus += keywordStemBonus(n1, n2)
	return minF(bonus, 0.3)
}

// expansionBonus checks whether abbr is a known abbreviation whose
// expansion appears in full. Expansions match raw or porter2-stemmed, so
// "authenticating" still satisfies an "authenticate" expansion.
func (m *HeuristicMatcher) expansionBonus(abbr, full string) float64 {
	for _, exp := range m.abbreviations.Expansions(abbr) {
		exp = strings.ToLower(exp)
		if strings.Contains(full, exp) || strings.Contains(full, porter2.Stem(exp)) {
			return 0.25
		}
	}
	return 0.0
}

// keywordStemBonus grants 0.1 per element keyword whose stem appears in
// both strings, capped at 0.2.
func keywordStemBonus(n1, n2 string) float64 {
	bonus := 0.0
	for _, kw := range elementKeywords {
		stem := kw[:keywordStemLen]
		if (strings.Contains(n1, kw) && strings.Contains(n2, stem)) ||
			(strings.Contains(n2, kw) && strings.Contains(n1, stem)) {
			bonus += 0.1
		}
	}
	return minF(bonus, 0.2)
}

// lengthAdjustment compensates for the distance penalty short strings pay,
// and penalizes grossly mismatched lengths.
func lengthAdjustment(n1, n2 string) float64 {
	minLen := min(len(n1), len(n2))
	maxLen := max(len(n1), len(n2))

	if minLen <= 3 && maxLen <= 8 {
		return 0.15
	}
	if minLen <= 5 && maxLen <= 12 {
		return 0.10
	}

	if float64(minLen)/float64(maxLen) < 0.3 {
		return -0.10
	}

	return 0.0
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// orderByLength returns (shorter, longer); ties keep argument order.
func orderByLength(a, b string) (string, string) {
	if len(a) <= len(b) {
		return a, b
	}
	return b, a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
