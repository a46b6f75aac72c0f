package knowledge

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bfforex/EvolveUI/pkg/types"
)

// watchedExtensions are the file types ingested from the knowledge dir.
var watchedExtensions = []string{".txt", ".md"}

// Watcher ingests text files dropped into a knowledge directory. Created
// and modified files are re-indexed; existing files are ingested once at
// startup.
type Watcher struct {
	ingestor *Ingestor
	watcher  *fsnotify.Watcher
	log      *zap.Logger
}

// NewWatcher creates a directory watcher feeding the ingestor.
func NewWatcher(ingestor *Ingestor, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{ingestor: ingestor, watcher: fsw, log: log}, nil
}

// Watch ingests the directory's existing files, then blocks processing
// change events until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.ingestExisting(ctx, dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !watchedFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.ingestFile(ctx, event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("knowledge watcher error", zap.Error(err))
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) ingestExisting(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.log.Warn("reading knowledge dir failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if watchedFile(path) {
			w.ingestFile(ctx, path)
		}
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		w.log.Warn("reading knowledge file failed", zap.String("path", path), zap.Error(err))
		return
	}
	if len(content) == 0 {
		return
	}

	metadata := map[string]types.MetadataValue{
		"filename": types.StringValue(filepath.Base(path)),
	}
	ids, err := w.ingestor.AddDocument(ctx, string(content), metadata)
	if err != nil {
		w.log.Warn("indexing knowledge file failed", zap.String("path", path), zap.Error(err))
		return
	}
	w.log.Info("knowledge file indexed",
		zap.String("path", path),
		zap.Int("chunks", len(ids)))
}

func watchedFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range watchedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
