// Package server exposes the self-healing service over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/emreeduymaz/self-healing-ios/internal/config"
	"github.com/emreeduymaz/self-healing-ios/internal/debug"
	"github.com/emreeduymaz/self-healing-ios/internal/element"
	"github.com/emreeduymaz/self-healing-ios/internal/healing"
	"github.com/emreeduymaz/self-healing-ios/internal/match"
	"github.com/emreeduymaz/self-healing-ios/internal/version"
)

// Server hosts the self-healing HTTP API.
type Server struct {
	service   *healing.Service
	cfg       *config.Config
	server    *http.Server
	listener  net.Listener
	startTime time.Time

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// New creates a server around the given service.
func New(cfg *config.Config, service *healing.Service) *Server {
	return &Server{
		service:   service,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// Start binds the configured address and serves in the background. Use
// Addr to learn the bound address when the configuration used port 0.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	listener, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.Addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	s.registerHandlers(mux)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			debug.Printf("server error: %v", err)
		}
	}()

	debug.Printf("self-healing server listening on %s", listener.Addr())
	return nil
}

// Addr returns the bound listen address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.wg.Wait()
	return nil
}

func (s *Server) registerHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/self-healing/find", s.handleFind)
	mux.HandleFunc("POST /api/v1/self-healing/suggestions", s.handleSuggestions)
	mux.HandleFunc("POST /api/v1/self-healing/validate", s.handleValidate)

	mux.HandleFunc("POST /api/v1/self-healing/find-by-xpath", s.fieldSearchHandler(match.FieldXPath))
	mux.HandleFunc("POST /api/v1/self-healing/find-by-accessibility-id", s.fieldSearchHandler(match.FieldAccessibilityID))
	mux.HandleFunc("POST /api/v1/self-healing/find-by-element-id", s.fieldSearchHandler(match.FieldElementID))
	mux.HandleFunc("POST /api/v1/self-healing/find-by-class-name", s.fieldSearchHandler(match.FieldClassName))
	mux.HandleFunc("POST /api/v1/self-healing/find-by-name", s.fieldSearchHandler(match.FieldName))

	mux.HandleFunc("PUT /api/v1/self-healing/update/{id}", s.handleUpdate)
	mux.HandleFunc("GET /api/v1/self-healing/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/self-healing/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/self-healing/config", s.handleConfig)

	mux.HandleFunc("POST /api/v1/test/string-similarity", s.handleStringSimilarity)
	mux.HandleFunc("POST /api/v1/test/element-similarity", s.handleElementSimilarity)
	mux.HandleFunc("POST /api/v1/test/xpath-similarity", s.handleXPathSimilarity)
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var query element.Element
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	outcome, err := s.service.FindElement(query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := FindResponse{
		Status:      outcome.Kind,
		Element:     outcome.Matched,
		Score:       outcome.Score,
		AutoApplied: outcome.AutoApplied,
	}
	if outcome.Kind == match.KindNotFound {
		resp.Message = "No matching element found"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var query element.Element
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	suggestions, err := s.service.Suggestions(query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []match.Suggestion{}
	}

	writeJSON(w, http.StatusOK, SuggestionsResponse{
		Suggestions: suggestions,
		Count:       len(suggestions),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var e element.Element
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	reasons := s.service.ValidateElement(&e)
	writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:   len(reasons) == 0,
		Reasons: reasons,
	})
}

func (s *Server) fieldSearchHandler(field match.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FieldSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", nil)
			return
		}

		matches, err := s.service.FindByField(field, req.Value)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if matches == nil {
			matches = []match.ScoredCandidate{}
		}

		writeJSON(w, http.StatusOK, FieldSearchResponse{
			Field:   field,
			Value:   req.Value,
			Matches: matches,
			Count:   len(matches),
		})
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	oldID := r.PathValue("id")

	var with element.Element
	if err := json.NewDecoder(r.Body).Decode(&with); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	updated, err := s.service.UpdateElement(oldID, with)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if !updated {
		writeJSON(w, http.StatusNotFound, UpdateResponse{
			Updated: false,
			Message: fmt.Sprintf("element %q not found", oldID),
		})
		return
	}

	writeJSON(w, http.StatusOK, UpdateResponse{Updated: true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Statistics()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "UP",
		Version: version.Version,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.service.Config()
	writeJSON(w, http.StatusOK, ConfigResponse{
		SimilarityThreshold: cfg.SimilarityThreshold,
		AutoUpdateEnabled:   cfg.AutoUpdateEnabled,
		MaxSuggestions:      cfg.MaxSuggestions,
	})
}

func (s *Server) handleStringSimilarity(w http.ResponseWriter, r *http.Request) {
	var req StringSimilarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	engine := s.service.Engine()
	writeJSON(w, http.StatusOK, StringSimilarityResponse{
		First:  req.First,
		Second: req.Second,
		Score:  engine.Comparator().CompareStrings(req.First, req.Second),
		DynamicThreshold: engine.Matcher().DynamicThreshold(
			req.First, req.Second, s.service.Config().SimilarityThreshold),
	})
}

func (s *Server) handleElementSimilarity(w http.ResponseWriter, r *http.Request) {
	var req ElementSimilarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	comparator := s.service.Engine().Comparator()
	writeJSON(w, http.StatusOK, ElementSimilarityResponse{
		Score:      comparator.CompareElements(req.First, req.Second, s.service.Config().SimilarityThreshold),
		ExactMatch: comparator.IsExactMatch(req.First, req.Second),
	})
}

func (s *Server) handleXPathSimilarity(w http.ResponseWriter, r *http.Request) {
	var req StringSimilarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	engine := s.service.Engine()
	writeJSON(w, http.StatusOK, StringSimilarityResponse{
		First:  req.First,
		Second: req.Second,
		Score:  engine.Comparator().CompareXPaths(req.First, req.Second),
		DynamicThreshold: engine.Matcher().DynamicThreshold(
			req.First, req.Second, s.service.Config().SimilarityThreshold),
	})
}

// writeServiceError maps service failures to HTTP statuses: validation
// failures are the client's fault, everything else means the corpus could
// not be served.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *healing.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, "validation failed", verr.Reasons)
		return
	}
	writeError(w, http.StatusServiceUnavailable, err.Error(), nil)
}

func writeError(w http.ResponseWriter, status int, msg string, reasons []string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Reasons: reasons})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debug.Printf("failed to encode response: %v", err)
	}
}
