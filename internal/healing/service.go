// Package healing wires the matching engine to the corpus store and
// exposes the service operations the HTTP API and CLI are built on.
package healing

import (
	"fmt"
	"strings"

	"github.com/emreeduymaz/self-healing-ios/internal/config"
	"github.com/emreeduymaz/self-healing-ios/internal/debug"
	"github.com/emreeduymaz/self-healing-ios/internal/element"
	"github.com/emreeduymaz/self-healing-ios/internal/match"
	"github.com/emreeduymaz/self-healing-ios/internal/store"
)

// fieldSearchBaseThreshold is the base threshold for single-attribute
// searches; like the suggestion threshold it sits low so near misses rank.
const fieldSearchBaseThreshold = 0.15

// ValidationError reports why a query element was rejected before any
// matching ran.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "invalid element: " + strings.Join(e.Reasons, "; ")
}

// Service is the self-healing facade: it validates queries, takes corpus
// snapshots, runs the engine and applies auto-update replacements back to
// the store.
type Service struct {
	store  *store.FileStore
	engine *match.Engine
	cfg    match.Config
}

// New builds a service from the loaded configuration and store. The
// configured abbreviation dictionary seeds the heuristic matcher.
func New(cfg *config.Config, st *store.FileStore) *Service {
	dict := match.AbbreviationDictionary(cfg.Abbreviations)
	matcher := match.NewHeuristicMatcher(dict)

	return &Service{
		store:  st,
		engine: match.NewEngine(matcher),
		cfg: match.Config{
			SimilarityThreshold: cfg.Matching.SimilarityThreshold,
			AutoUpdateEnabled:   cfg.Matching.AutoUpdate,
			MaxSuggestions:      cfg.Matching.MaxSuggestions,
		},
	}
}

// Engine exposes the underlying matching engine for diagnostic endpoints.
func (s *Service) Engine() *match.Engine {
	return s.engine
}

// Config returns the effective matching configuration.
func (s *Service) Config() match.Config {
	return s.cfg
}

// FindElement runs the full decision workflow for a query. When the
// outcome carries a replacement instruction it is applied to the store.
// A replacement naming an id the corpus never held is a no-op there; the
// outcome still reports that the update was requested.
func (s *Service) FindElement(query element.Element) (match.Outcome, error) {
	// A query with nothing to search on is a miss, not an error.
	if !query.Searchable() {
		return match.Outcome{Kind: match.KindNotFound, Query: query}, nil
	}

	corpus, err := s.store.Snapshot()
	if err != nil {
		return match.Outcome{}, fmt.Errorf("failed to load element corpus: %w", err)
	}

	outcome := s.engine.FindBestMatch(query, corpus, s.cfg)

	if outcome.Replacement != nil {
		if _, err := s.store.Replace(outcome.Replacement.OldID, outcome.Replacement.With); err != nil {
			debug.Printf("auto-update failed for %q: %v", outcome.Replacement.OldID, err)
		}
	}

	return outcome, nil
}

// Suggestions returns the ranked alternatives for a query, limited by the
// configured maximum.
func (s *Service) Suggestions(query element.Element) ([]match.Suggestion, error) {
	if !query.Searchable() {
		return nil, nil
	}

	corpus, err := s.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load element corpus: %w", err)
	}

	return s.engine.Suggest(query, corpus, s.cfg, s.cfg.MaxSuggestions), nil
}

// FindByField searches the corpus on a single attribute value. The result
// is limited by the configured maximum suggestions.
func (s *Service) FindByField(field match.Field, value string) ([]match.ScoredCandidate, error) {
	// An absent search value yields an empty result, not an error.
	if !element.HasValue(value) {
		return nil, nil
	}

	corpus, err := s.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load element corpus: %w", err)
	}

	query := element.Element{}
	switch field {
	case match.FieldXPath:
		query.XPath = value
	case match.FieldAccessibilityID:
		query.AccessibilityID = value
	case match.FieldElementID:
		query.ElementID = value
	case match.FieldClassName:
		query.ClassName = value
	case match.FieldName:
		query.Name = value
	default:
		return nil, fmt.Errorf("unknown search field %q", field)
	}

	candidates := s.engine.FindByField(query, corpus, field, fieldSearchBaseThreshold)
	if limit := s.cfg.MaxSuggestions; limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// UpdateElement replaces the element with the given id. The replacement
// element must itself be valid. It returns false when the id is unknown.
func (s *Service) UpdateElement(oldID string, with element.Element) (bool, error) {
	if reasons := element.Validate(&with); len(reasons) > 0 {
		return false, &ValidationError{Reasons: reasons}
	}

	return s.store.Replace(oldID, with)
}

// ValidateElement reports the validation failures for an element, empty
// when the element is acceptable as a query.
func (s *Service) ValidateElement(e *element.Element) []string {
	return element.Validate(e)
}

// Stats summarizes the loaded corpus and the effective configuration.
type Stats struct {
	TotalElements    int            `json:"total_elements"`
	ElementsByScreen map[string]int `json:"elements_by_screen"`
	ElementsByType   map[string]int `json:"elements_by_type"`

	SimilarityThreshold float64 `json:"similarity_threshold"`
	AutoUpdateEnabled   bool    `json:"auto_update_enabled"`
	MaxSuggestions      int     `json:"max_suggestions"`
}

// Statistics computes corpus counts from the current snapshot.
func (s *Service) Statistics() (Stats, error) {
	corpus, err := s.store.Snapshot()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load element corpus: %w", err)
	}

	stats := Stats{
		TotalElements:    len(corpus),
		ElementsByScreen: make(map[string]int),
		ElementsByType:   make(map[string]int),

		SimilarityThreshold: s.cfg.SimilarityThreshold,
		AutoUpdateEnabled:   s.cfg.AutoUpdateEnabled,
		MaxSuggestions:      s.cfg.MaxSuggestions,
	}

	for _, e := range corpus {
		if element.HasValue(e.Screen) {
			stats.ElementsByScreen[e.Screen]++
		}
		if element.HasValue(e.ElementType) {
			stats.ElementsByType[e.ElementType]++
		}
	}

	return stats, nil
}
