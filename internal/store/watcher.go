package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/emreeduymaz/self-healing-ios/internal/debug"
)

// debounceWindow coalesces bursts of events from editors that write a file
// in several operations.
const debounceWindow = 200 * time.Millisecond

// Watcher invalidates the store cache when corpus files change on disk, so
// out-of-band edits become visible before the TTL expires.
type Watcher struct {
	store   *FileStore
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over the store's corpus directories. Call
// Run to start processing events.
func NewWatcher(s *FileStore) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	for _, root := range s.watchRoots() {
		if err := fsw.Add(root); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", root, err)
		}
		debug.Printf("watching %s for corpus changes", root)
	}

	return &Watcher{store: s, watcher: fsw}, nil
}

// Run processes file system events until the context is cancelled or the
// underlying watcher closes. It always returns nil on context
// cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			debug.Printf("corpus change detected: %s", event.Name)
			if timer == nil {
				timer = time.AfterFunc(debounceWindow, w.store.Invalidate)
			} else {
				timer.Reset(debounceWindow)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			debug.Printf("watcher error: %v", err)
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
