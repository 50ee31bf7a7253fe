// Package store provides the file-backed corpus store. It owns all corpus
// mutation and caching; the matching engine only ever sees read-only
// snapshots taken from here.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/emreeduymaz/self-healing-ios/internal/config"
	"github.com/emreeduymaz/self-healing-ios/internal/debug"
	"github.com/emreeduymaz/self-healing-ios/internal/element"
)

// FileStore loads elements from one JSON file or a glob of files, caches
// the decoded corpus for a TTL window, and skips re-decoding when the file
// contents are unchanged. Replacement writes through to disk and
// invalidates the cache; consistency is last-write-wins.
type FileStore struct {
	path string
	ttl  time.Duration

	mu          sync.RWMutex
	cached      []element.Element
	loadedAt    time.Time
	contentHash uint64
}

// New creates a store for the configured path. The path is not required
// to exist yet; loading reports the error when it happens.
func New(cfg config.Store) *FileStore {
	return &FileStore{
		path: cfg.Path,
		ttl:  time.Duration(cfg.CacheTTLMs) * time.Millisecond,
	}
}

// Snapshot returns the current corpus, reloading from disk when the cache
// window has expired. The returned slice is shared and must be treated as
// read-only by callers.
func (s *FileStore) Snapshot() ([]element.Element, error) {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.loadedAt) < s.ttl {
		snapshot := s.cached
		s.mu.RUnlock()
		return snapshot, nil
	}
	s.mu.RUnlock()

	return s.reload()
}

// Invalidate drops the cached corpus so the next Snapshot reloads.
func (s *FileStore) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Replace substitutes the element identified by oldID with the given
// element, persists the owning file and invalidates the cache. It returns
// false (without error) when no element carries oldID: a stale query id
// that never existed in the corpus is a normal, ignorable request.
func (s *FileStore) Replace(oldID string, with element.Element) (bool, error) {
	if oldID == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.resolveFiles()
	if err != nil {
		return false, err
	}

	for _, file := range files {
		corpus, _, err := readCorpusFile(file)
		if err != nil {
			return false, err
		}

		for i := range corpus.TestElements {
			if corpus.TestElements[i].ElementID != oldID {
				continue
			}
			corpus.TestElements[i] = with

			if err := writeCorpusFile(file, corpus); err != nil {
				return false, err
			}

			s.cached = nil
			debug.Printf("replaced element %q with %q in %s", oldID, with.ElementID, file)
			return true, nil
		}
	}

	debug.Printf("element not found for replacement: %q", oldID)
	return false, nil
}

// reload reads all corpus files, reusing the decoded corpus when the
// combined content hash is unchanged.
func (s *FileStore) reload() ([]element.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have reloaded while we waited for the lock.
	if s.cached != nil && time.Since(s.loadedAt) < s.ttl {
		return s.cached, nil
	}

	files, err := s.resolveFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no corpus files match %s", s.path)
	}

	hash := xxhash.New()
	contents := make(map[string][]byte, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus file %s: %w", file, err)
		}
		contents[file] = data
		_, _ = hash.WriteString(file)
		_, _ = hash.Write(data)
	}

	if sum := hash.Sum64(); s.cached != nil && sum == s.contentHash {
		// Unchanged on disk; just refresh the cache window.
		s.loadedAt = time.Now()
		return s.cached, nil
	} else {
		s.contentHash = sum
	}

	var merged []element.Element
	for _, file := range files {
		var corpus element.Corpus
		if err := json.Unmarshal(contents[file], &corpus); err != nil {
			return nil, fmt.Errorf("failed to decode corpus file %s: %w", file, err)
		}
		merged = append(merged, corpus.TestElements...)
	}

	s.cached = merged
	s.loadedAt = time.Now()
	debug.Printf("loaded %d elements from %d file(s)", len(merged), len(files))

	return merged, nil
}

// resolveFiles expands the store path into the concrete file list, sorted
// by name so multi-file corpora merge deterministically.
func (s *FileStore) resolveFiles() ([]string, error) {
	if !isGlobPattern(s.path) {
		return []string{s.path}, nil
	}

	matches, err := doublestar.FilepathGlob(s.path)
	if err != nil {
		return nil, fmt.Errorf("invalid corpus glob %s: %w", s.path, err)
	}

	sort.Strings(matches)
	return matches, nil
}

func isGlobPattern(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// watchRoots returns the directories the watcher should observe.
func (s *FileStore) watchRoots() []string {
	if !isGlobPattern(s.path) {
		return []string{filepath.Dir(s.path)}
	}

	// Watch from the fixed prefix of the pattern downward.
	base, _ := doublestar.SplitPattern(s.path)
	if base == "" {
		base = "."
	}
	return []string{base}
}

func readCorpusFile(path string) (element.Corpus, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return element.Corpus{}, nil, fmt.Errorf("failed to read corpus file %s: %w", path, err)
	}

	var corpus element.Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return element.Corpus{}, nil, fmt.Errorf("failed to decode corpus file %s: %w", path, err)
	}
	return corpus, data, nil
}

// writeCorpusFile persists atomically: write a temp file in the same
// directory, then rename over the original.
func writeCorpusFile(path string, corpus element.Corpus) error {
	data, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".selfheal-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp corpus file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write corpus file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close corpus file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace corpus file %s: %w", path, err)
	}

	return nil
}
