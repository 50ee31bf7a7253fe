package match

import (
	"sort"

	"github.com/emreeduymaz/self-healing-ios/internal/element"
)

// Inclusion floors. The general floor intentionally widens the result set:
// any pair scoring above it is kept for near-miss visibility even when it
// fails its dynamic threshold. Nearly every non-empty string pair clears
// 0.1, so ranked results err heavily toward over-inclusion; this matches
// the intended product behavior and is kept on purpose.
const (
	generalInclusionFloor = 0.1

	// Field-restricted searches cap the effective threshold per field.
	// The id floor is tighter because id collisions are more consequential
	// than cosmetic-field collisions.
	fieldInclusionFloor = 0.2
	idInclusionFloor    = 0.15
)

// Engine is the matching engine: it ranks corpora against query elements
// and drives the find/suggest decision workflow. It is stateless per call
// and safe for concurrent use.
type Engine struct {
	matcher    *HeuristicMatcher
	comparator *Comparator
}

// NewEngine creates an engine around the given heuristic matcher.
func NewEngine(matcher *HeuristicMatcher) *Engine {
	return &Engine{
		matcher:    matcher,
		comparator: NewComparator(matcher),
	}
}

// Comparator exposes the engine's attribute comparator.
func (e *Engine) Comparator() *Comparator {
	return e.comparator
}

// Matcher exposes the engine's heuristic matcher.
func (e *Engine) Matcher() *HeuristicMatcher {
	return e.matcher
}

// Rank scores every corpus element against the query and returns the
// candidates sorted by score descending (stable, so ties keep corpus
// order). A candidate is included when it clears its pair-specific dynamic
// threshold or the general inclusion floor. The query itself (same
// element_id) is skipped.
func (e *Engine) Rank(query element.Element, corpus []element.Element, baseThreshold float64) []ScoredCandidate {
	var matches []ScoredCandidate

	for _, candidate := range corpus {
		if query.SameIdentity(candidate) {
			continue
		}

		score := e.comparator.CompareElements(query, candidate, baseThreshold)

		dynamicThreshold := e.matcher.DynamicThreshold(
			query.KeyIdentifier(), candidate.KeyIdentifier(), baseThreshold)

		if score >= dynamicThreshold || score >= generalInclusionFloor {
			matches = append(matches, ScoredCandidate{Element: candidate, Score: score})
		}
	}

	sortByScore(matches)
	return matches
}

// FindByField ranks the corpus by similarity on a single attribute. An
// absent query field yields an empty result, not an error. The effective
// threshold is the lowest of the base threshold, the pair's dynamic
// threshold and the field's inclusion floor.
func (e *Engine) FindByField(query element.Element, corpus []element.Element, field Field, baseThreshold float64) []ScoredCandidate {
	queryValue := fieldValue(query, field)
	if !element.HasValue(queryValue) {
		return nil
	}

	floor := fieldInclusionFloor
	if field == FieldElementID {
		floor = idInclusionFloor
	}

	var matches []ScoredCandidate

	for _, candidate := range corpus {
		candidateValue := fieldValue(candidate, field)
		if !element.HasValue(candidateValue) {
			continue
		}

		score := e.comparator.CompareStrings(queryValue, candidateValue)
		dynamicThreshold := e.matcher.DynamicThreshold(queryValue, candidateValue, baseThreshold)

		effective := minF(minF(baseThreshold, dynamicThreshold), floor)
		if score >= effective {
			matches = append(matches, ScoredCandidate{Element: candidate, Score: score})
		}
	}

	sortByScore(matches)
	return matches
}

func fieldValue(e element.Element, field Field) string {
	switch field {
	case FieldXPath:
		return e.XPath
	case FieldAccessibilityID:
		return e.AccessibilityID
	case FieldElementID:
		return e.ElementID
	case FieldClassName:
		return e.ClassName
	case FieldName:
		return e.Name
	}
	return ""
}

func sortByScore(matches []ScoredCandidate) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}
