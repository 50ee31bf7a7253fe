package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".selfheal.kdl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.75, cfg.Matching.SimilarityThreshold)
	assert.True(t, cfg.Matching.AutoUpdate)
	assert.Equal(t, 5, cfg.Matching.MaxSuggestions)
	assert.Equal(t, "elements.json", cfg.Store.Path)
	assert.Equal(t, 60000, cfg.Store.CacheTTLMs)
	assert.False(t, cfg.Store.Watch)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Abbreviations)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.kdl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
matching {
    similarity_threshold 0.8
    auto_update false
    max_suggestions 10
}

store {
    path "testdata/elements/*.json"
    cache_ttl_ms 5000
    watch true
}

server {
    addr ":9090"
}

abbreviations {
    btn "button"
    acc "accessibility" "access"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Matching.SimilarityThreshold)
	assert.False(t, cfg.Matching.AutoUpdate)
	assert.Equal(t, 10, cfg.Matching.MaxSuggestions)

	assert.Equal(t, "testdata/elements/*.json", cfg.Store.Path)
	assert.Equal(t, 5000, cfg.Store.CacheTTLMs)
	assert.True(t, cfg.Store.Watch)

	assert.Equal(t, ":9090", cfg.Server.Addr)

	assert.Equal(t, []string{"button"}, cfg.Abbreviations["btn"])
	assert.Equal(t, []string{"accessibility", "access"}, cfg.Abbreviations["acc"])
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
matching {
    similarity_threshold 0.6
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Matching.SimilarityThreshold)
	assert.True(t, cfg.Matching.AutoUpdate)
	assert.Equal(t, "elements.json", cfg.Store.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadInvalidKDL(t *testing.T) {
	path := writeConfig(t, `matching { unterminated`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Matching.SimilarityThreshold = 1.5 }},
		{"threshold negative", func(c *Config) { c.Matching.SimilarityThreshold = -0.1 }},
		{"zero suggestions", func(c *Config) { c.Matching.MaxSuggestions = 0 }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"negative ttl", func(c *Config) { c.Store.CacheTTLMs = -1 }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
matching {
    similarity_threshold 1.5
}
`)

	_, err := Load(path)
	assert.Error(t, err)
}
