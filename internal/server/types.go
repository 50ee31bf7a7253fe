package server

import (
	"github.com/emreeduymaz/self-healing-ios/internal/element"
	"github.com/emreeduymaz/self-healing-ios/internal/match"
)

// FindResponse is the wire form of a best-match outcome.
type FindResponse struct {
	Status      match.Kind       `json:"status"`
	Element     *element.Element `json:"element,omitempty"`
	Score       float64          `json:"similarity_score"`
	AutoApplied bool             `json:"auto_updated"`
	Message     string           `json:"message,omitempty"`
}

// SuggestionsResponse lists ranked alternatives for a query element.
type SuggestionsResponse struct {
	Suggestions []match.Suggestion `json:"suggestions"`
	Count       int                `json:"count"`
}

// ValidateResponse reports whether an element is usable as a query.
type ValidateResponse struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// FieldSearchRequest carries the value for a single-attribute search.
type FieldSearchRequest struct {
	Value string `json:"value"`
}

// FieldSearchResponse lists the candidates for a single-attribute search.
type FieldSearchResponse struct {
	Field   match.Field             `json:"field"`
	Value   string                  `json:"value"`
	Matches []match.ScoredCandidate `json:"matches"`
	Count   int                     `json:"count"`
}

// UpdateResponse reports the result of an explicit element replacement.
type UpdateResponse struct {
	Updated bool   `json:"updated"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ConfigResponse echoes the effective matching configuration.
type ConfigResponse struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	AutoUpdateEnabled   bool    `json:"auto_update_enabled"`
	MaxSuggestions      int     `json:"max_suggestions"`
}

// StringSimilarityRequest carries two raw strings for the diagnostic
// similarity endpoint.
type StringSimilarityRequest struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// StringSimilarityResponse reports the composite string score and the
// pair's dynamic acceptance threshold.
type StringSimilarityResponse struct {
	First            string  `json:"first"`
	Second           string  `json:"second"`
	Score            float64 `json:"score"`
	DynamicThreshold float64 `json:"dynamic_threshold"`
}

// ElementSimilarityRequest carries two elements for the diagnostic
// comparison endpoint.
type ElementSimilarityRequest struct {
	First  element.Element `json:"first"`
	Second element.Element `json:"second"`
}

// ElementSimilarityResponse reports the weighted element score.
type ElementSimilarityResponse struct {
	Score      float64 `json:"score"`
	ExactMatch bool    `json:"exact_match"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Reasons []string `json:"reasons,omitempty"`
}
