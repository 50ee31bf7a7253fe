package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emreeduymaz/self-healing-ios/internal/element"
)

func TestWatcherInvalidatesOnWrite(t *testing.T) {
	s, path := newTestStore(t, 60000, element.Element{ElementID: "a"})

	w, err := NewWatcher(s)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	_, err = s.Snapshot()
	require.NoError(t, err)

	writeCorpus(t, path, element.Element{ElementID: "a"}, element.Element{ElementID: "b"})

	// The debounced invalidation lands shortly after the write event.
	assert.Eventually(t, func() bool {
		elements, err := s.Snapshot()
		return err == nil && len(elements) == 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	<-done
}
