// Package config loads and validates the service configuration from a KDL
// file, falling back to built-in defaults when no file is present.
package config

import (
	"fmt"
)

// DefaultConfigFile is the config file looked up relative to the working
// directory when no explicit path is given.
const DefaultConfigFile = ".selfheal.kdl"

type Config struct {
	Matching Matching
	Store    Store
	Server   Server

	// Abbreviations maps an abbreviation to its expansions, injected into
	// the heuristic matcher. Empty unless configured.
	Abbreviations map[string][]string
}

// Matching holds the engine tunables.
type Matching struct {
	SimilarityThreshold float64 // acceptance bar for SIMILARITY vs LOW_SIMILARITY
	AutoUpdate          bool    // replace stale identities on successful matches
	MaxSuggestions      int     // result limit for suggestions and field searches
}

// Store holds the corpus store settings.
type Store struct {
	Path       string // elements file, or a glob pattern for multi-file corpora
	CacheTTLMs int    // cache validity window in milliseconds
	Watch      bool   // invalidate the cache on file system events
}

// Server holds the HTTP server settings.
type Server struct {
	Addr string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Matching: Matching{
			SimilarityThreshold: 0.75,
			AutoUpdate:          true,
			MaxSuggestions:      5,
		},
		Store: Store{
			Path:       "elements.json",
			CacheTTLMs: 60000,
			Watch:      false,
		},
		Server: Server{
			Addr: ":8080",
		},
		Abbreviations: map[string][]string{},
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Matching.SimilarityThreshold < 0 || c.Matching.SimilarityThreshold > 1 {
		return fmt.Errorf("matching.similarity_threshold must be in [0,1], got %.2f", c.Matching.SimilarityThreshold)
	}
	if c.Matching.MaxSuggestions <= 0 {
		return fmt.Errorf("matching.max_suggestions must be positive, got %d", c.Matching.MaxSuggestions)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if c.Store.CacheTTLMs < 0 {
		return fmt.Errorf("store.cache_ttl_ms must not be negative, got %d", c.Store.CacheTTLMs)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
