package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfforex/EvolveUI/pkg/types"
)

func knowledgeCount(ix *Index) int {
	n, err := ix.Count(context.Background(), types.SourceKnowledge)
	if err != nil {
		return -1
	}
	return n
}

func TestWatcherIngestsDirectoryAndBlocksUntilCancelled(t *testing.T) {
	ix := openTestIndex(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.md"), []byte("seed knowledge"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.bin"), []byte("binary"), 0o644))

	in := NewIngestor(ix, &stubEmbedder{vectors: map[string][]float32{}}, nil)
	w, err := NewWatcher(in, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, dir) }()

	require.Eventually(t, func() bool {
		return knowledgeCount(ix) == 1
	}, 2*time.Second, 10*time.Millisecond, "existing watched file must be ingested at startup, unwatched extensions skipped")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dropped.txt"), []byte("new note"), 0o644))
	require.Eventually(t, func() bool {
		return knowledgeCount(ix) >= 2
	}, 2*time.Second, 10*time.Millisecond, "created file must be ingested")

	// The event loop must keep running until its context is cancelled;
	// callers run it in a goroutine.
	select {
	case err := <-done:
		t.Fatalf("watch returned before cancellation: %v", err)
	default:
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestWatcherRejectsMissingDirectory(t *testing.T) {
	ix := openTestIndex(t)
	in := NewIngestor(ix, &stubEmbedder{vectors: map[string][]float32{}}, nil)
	w, err := NewWatcher(in, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestWatchedFileExtensions(t *testing.T) {
	assert.True(t, watchedFile("notes/a.txt"))
	assert.True(t, watchedFile("a.md"))
	assert.False(t, watchedFile("a.pdf"))
	assert.False(t, watchedFile("txt"))
}
