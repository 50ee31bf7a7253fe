package match

import (
	"strings"

	"github.com/emreeduymaz/self-healing-ios/internal/element"
	"github.com/emreeduymaz/self-healing-ios/internal/textdist"
)

// Base weights for the multi-field comparison. element_id is deliberately
// absent: identity is handled by the exact-match short circuit, never by
// weighted scoring.
const (
	accessibilityIDWeight = 0.30
	nameWeight            = 0.25
	xpathWeight           = 0.18
	classNameWeight       = 0.12
	screenWeight          = 0.10
	elementTypeWeight     = 0.05
)

// Context bonus increments, applied after weight normalization.
const (
	sameScreenBonus      = 0.05
	sameElementTypeBonus = 0.03
	sameClassNameBonus   = 0.02
	contextBonusCap      = 0.10
)

// XPath structural markers for the iOS locator grammar.
const (
	xpathTypeMarker = "XCUIElementType"
	xpathNameMarker = "@name='"
)

// Comparator scores pairs of elements across the fixed field schema.
type Comparator struct {
	matcher *HeuristicMatcher
}

// NewComparator creates a comparator using the given heuristic matcher for
// per-field string similarity.
func NewComparator(matcher *HeuristicMatcher) *Comparator {
	return &Comparator{matcher: matcher}
}

// weightedField is one (weight, presence, score) tuple of the comparison
// fold. Scores are computed lazily: scoreFn runs only for present pairs.
type weightedField struct {
	weight  float64
	present bool
	scoreFn func() float64
}

// foldWeighted reduces the tuples to accumulated/totalWeight. No
// comparable field pair yields 0.0, never a division by zero.
func foldWeighted(fields []weightedField) float64 {
	accumulated, totalWeight := 0.0, 0.0
	for _, f := range fields {
		if !f.present {
			continue
		}
		accumulated += f.weight * f.scoreFn()
		totalWeight += f.weight
	}
	if totalWeight == 0 {
		return 0.0
	}
	return accumulated / totalWeight
}

// CompareElements computes the aggregate similarity of two elements in
// [0,1]. Only fields present on both sides participate; the weights of the
// participating fields are renormalized so missing fields carry no
// penalty. A context bonus for matching screen/type/class is added after
// normalization.
func (c *Comparator) CompareElements(e1, e2 element.Element, baseThreshold float64) float64 {
	both := func(a, b string) bool { return element.HasValue(a) && element.HasValue(b) }

	fields := []weightedField{
		{accessibilityIDWeight, both(e1.AccessibilityID, e2.AccessibilityID),
			func() float64 { return c.CompareStrings(e1.AccessibilityID, e2.AccessibilityID) }},
		{nameWeight, both(e1.Name, e2.Name),
			func() float64 { return c.CompareStrings(e1.Name, e2.Name) }},
		{xpathWeight, both(e1.XPath, e2.XPath),
			func() float64 { return c.CompareXPaths(e1.XPath, e2.XPath) }},
		{classNameWeight, both(e1.ClassName, e2.ClassName),
			func() float64 { return c.CompareStrings(e1.ClassName, e2.ClassName) }},
		{screenWeight, both(e1.Screen, e2.Screen),
			func() float64 { return c.CompareStrings(e1.Screen, e2.Screen) }},
		{elementTypeWeight, both(e1.ElementType, e2.ElementType),
			func() float64 { return c.CompareStrings(e1.ElementType, e2.ElementType) }},
	}

	score := foldWeighted(fields)
	if score == 0.0 {
		return 0.0
	}

	return clamp01(score + contextBonus(e1, e2))
}

// CompareStrings scores two attribute values. Identical strings short-
// circuit to 1.0 and case-insensitive matches to 0.95; otherwise the
// heuristic composite competes against a plain distance blend and the
// better score wins, so the heuristic can only help, never hurt.
func (c *Comparator) CompareStrings(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	if a == b {
		return 1.0
	}
	if strings.EqualFold(a, b) {
		return 0.95
	}

	enhanced := c.matcher.EnhancedSimilarity(a, b)
	traditional := textdist.NormalizedSimilarity(a, b)*0.6 + textdist.NormalizedLCSSimilarity(a, b)*0.4

	return maxF(enhanced, traditional)
}

// CompareXPaths scores two structural locators. It extracts the element
// type token and the @name attribute value and weighs the attribute most,
// then lets the discounted whole-string comparison win if the structural
// view scores worse (e.g. for locators without recognizable markers).
func (c *Comparator) CompareXPaths(x1, x2 string) float64 {
	if x1 == "" && x2 == "" {
		return 1.0
	}
	if x1 == "" || x2 == "" {
		return 0.0
	}

	if x1 == x2 {
		return 1.0
	}

	type1, type2 := extractElementType(x1), extractElementType(x2)
	attr1, attr2 := extractNameAttribute(x1), extractNameAttribute(x2)

	whole := c.CompareStrings(x1, x2)

	// No structural sub-feature on either side: whole-string comparison is
	// all we have.
	if type1 == "" && type2 == "" && attr1 == "" && attr2 == "" {
		return whole
	}

	structural := c.CompareStrings(attr1, attr2)*0.75 + c.CompareStrings(type1, type2)*0.25

	return maxF(structural, whole*0.8)
}

// extractElementType pulls the structural type token out of a locator,
// e.g. "//XCUIElementTypeButton[@name='x']" → "XCUIElementTypeButton".
func extractElementType(xpath string) string {
	start := strings.Index(xpath, xpathTypeMarker)
	if start == -1 {
		return ""
	}

	end := strings.Index(xpath[start:], "[")
	if end == -1 {
		return xpath[start:]
	}
	return xpath[start : start+end]
}

// extractNameAttribute pulls the @name value out of a locator,
// e.g. "[@name='loginButton']" → "loginButton".
func extractNameAttribute(xpath string) string {
	start := strings.Index(xpath, xpathNameMarker)
	if start == -1 {
		return ""
	}
	start += len(xpathNameMarker)

	end := strings.Index(xpath[start:], "'")
	if end == -1 {
		return ""
	}
	return xpath[start : start+end]
}

// contextBonus rewards case-insensitive equality of the contextual fields,
// capped at 0.10.
func contextBonus(e1, e2 element.Element) float64 {
	bonus := 0.0

	if element.HasValue(e1.Screen) && element.HasValue(e2.Screen) && strings.EqualFold(e1.Screen, e2.Screen) {
		bonus += sameScreenBonus
	}
	if element.HasValue(e1.ElementType) && element.HasValue(e2.ElementType) && strings.EqualFold(e1.ElementType, e2.ElementType) {
		bonus += sameElementTypeBonus
	}
	if element.HasValue(e1.ClassName) && element.HasValue(e2.ClassName) && strings.EqualFold(e1.ClassName, e2.ClassName) {
		bonus += sameClassNameBonus
	}

	return minF(bonus, contextBonusCap)
}

// IsExactMatch reports whether every identifying attribute present on both
// sides is byte-equal. At least one pair must have been comparable:
// elements sharing no identifying field never match exactly, even when
// they look identical to a human.
func (c *Comparator) IsExactMatch(e1, e2 element.Element) bool {
	hasAnyMatch := false

	pairs := [][2]string{
		{e1.AccessibilityID, e2.AccessibilityID},
		{e1.Name, e2.Name},
		{e1.XPath, e2.XPath},
		{e1.ElementID, e2.ElementID},
	}

	for _, p := range pairs {
		if !element.HasValue(p[0]) || !element.HasValue(p[1]) {
			continue
		}
		if p[0] != p[1] {
			return false
		}
		hasAnyMatch = true
	}

	return hasAnyMatch
}
