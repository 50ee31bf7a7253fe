package match

import (
	"github.com/emreeduymaz/self-healing-ios/internal/debug"
	"github.com/emreeduymaz/self-healing-ios/internal/element"
)

// Base thresholds for the ranked-search stages of the decision workflow.
// Both sit far below any acceptance threshold on purpose: ranking casts a
// wide net and classification happens afterwards.
const (
	findBaseThreshold    = 0.1
	suggestBaseThreshold = 0.15
)

// FindBestMatch runs the full decision workflow against a corpus snapshot:
//
//  1. exact element_id hit: EXACT, score 1.0, no side effect
//  2. exact attribute match: similarity-1.0 hit with auto-update logic
//  3. ranked search; empty means NOT_FOUND
//  4. top candidate classified SIMILARITY or LOW_SIMILARITY; a successful
//     similarity match with a differing id attaches a Replacement
//     instruction for the caller to apply
//
// The engine never mutates the corpus; all replacement is delegated
// through the returned instruction.
func (e *Engine) FindBestMatch(query element.Element, corpus []element.Element, cfg Config) Outcome {
	if query.HasElementID() {
		for i := range corpus {
			if corpus[i].ElementID == query.ElementID {
				debug.Printf("exact id match: %s", query.ElementID)
				return Outcome{
					Kind:    KindExact,
					Query:   query,
					Matched: &corpus[i],
					Score:   1.0,
				}
			}
		}
	}

	for i := range corpus {
		if e.comparator.IsExactMatch(query, corpus[i]) {
			debug.Printf("exact attribute match for query %q", query.ElementID)
			return e.similarityOutcome(query, corpus[i], 1.0, cfg)
		}
	}

	ranked := e.Rank(query, corpus, findBaseThreshold)
	if len(ranked) == 0 {
		return notFound(query)
	}

	best := ranked[0]
	debug.Printf("best candidate for %q: %q score=%.3f", query.ElementID, best.Element.ElementID, best.Score)

	return e.similarityOutcome(query, best.Element, best.Score, cfg)
}

// Suggest returns the ranked alternatives for a query, classified
// per-entry and truncated to limit.
func (e *Engine) Suggest(query element.Element, corpus []element.Element, cfg Config, limit int) []Suggestion {
	ranked := e.Rank(query, corpus, suggestBaseThreshold)

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	suggestions := make([]Suggestion, 0, len(ranked))
	for _, cand := range ranked {
		kind := KindLowSimilarity
		if cand.Score >= cfg.SimilarityThreshold {
			kind = KindSimilarity
		}
		suggestions = append(suggestions, Suggestion{
			Element: cand.Element,
			Score:   cand.Score,
			Kind:    kind,
		})
	}

	return suggestions
}

func (e *Engine) similarityOutcome(query element.Element, matched element.Element, score float64, cfg Config) Outcome {
	score = clamp01(score)

	kind := KindLowSimilarity
	if score >= cfg.SimilarityThreshold {
		kind = KindSimilarity
	}

	outcome := Outcome{
		Kind:    kind,
		Query:   query,
		Matched: &matched,
		Score:   score,
	}

	shouldUpdate := cfg.AutoUpdateEnabled && score >= cfg.SimilarityThreshold
	if shouldUpdate && query.HasElementID() && query.ElementID != matched.ElementID {
		outcome.AutoApplied = true
		outcome.Replacement = &Replacement{OldID: query.ElementID, With: matched}
	}

	return outcome
}

func notFound(query element.Element) Outcome {
	return Outcome{
		Kind:  KindNotFound,
		Query: query,
		Score: 0.0,
	}
}
