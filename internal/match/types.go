package match

import (
	"fmt"

	"github.com/emreeduymaz/self-healing-ios/internal/element"
)

// Kind classifies the outcome of a match operation.
type Kind string

const (
	KindExact         Kind = "EXACT"
	KindSimilarity    Kind = "SIMILARITY"
	KindLowSimilarity Kind = "LOW_SIMILARITY"
	KindNotFound      Kind = "NOT_FOUND"
)

// Field names a single searchable attribute for field-restricted searches.
type Field string

const (
	FieldXPath           Field = "xpath"
	FieldAccessibilityID Field = "accessibility_id"
	FieldElementID       Field = "element_id"
	FieldClassName       Field = "class_name"
	FieldName            Field = "name"
)

// Config carries the engine's tunables.
type Config struct {
	SimilarityThreshold float64
	AutoUpdateEnabled   bool
	MaxSuggestions      int
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.75,
		AutoUpdateEnabled:   true,
		MaxSuggestions:      5,
	}
}

// ScoredCandidate pairs a corpus element with its similarity score.
type ScoredCandidate struct {
	Element element.Element `json:"element"`
	Score   float64         `json:"score"`
}

// Replacement is an explicit instruction to replace the record identified
// by OldID with the With element. The engine only ever emits it; applying
// the mutation is the corpus store's business.
type Replacement struct {
	OldID string
	With  element.Element
}

// Outcome is the classified result of a best-match search.
//
// Invariants: Score is always in [0,1]; KindExact implies Score == 1.0 and
// Matched != nil; KindNotFound implies Matched == nil and Score == 0.0.
type Outcome struct {
	Kind        Kind
	Query       element.Element
	Matched     *element.Element
	Score       float64
	AutoApplied bool

	// Replacement is non-nil when a successful similarity match requests
	// that the query's stale identity be replaced in the corpus.
	Replacement *Replacement
}

// Suggestion is one ranked alternative returned by Suggest.
type Suggestion struct {
	Element element.Element `json:"element"`
	Score   float64         `json:"score"`
	Kind    Kind            `json:"kind"`
}

// String returns a compact representation for debug logging.
func (o Outcome) String() string {
	matched := "<none>"
	if o.Matched != nil {
		matched = o.Matched.ElementID
	}
	return fmt.Sprintf("Outcome{%s score=%.3f matched=%s autoApplied=%v}",
		o.Kind, o.Score, matched, o.AutoApplied)
}
