// Package ingest watches the inbox directory and feeds dropped
// documents into the pipeline automatically.
package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// acceptedExtensions for inbox drops.
var acceptedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ProcessFunc handles one dropped document.
type ProcessFunc func(ctx context.Context, path string)

// Watcher observes a directory for new documents.
type Watcher struct {
	dir     string
	process ProcessFunc
	logger  *slog.Logger

	// settle is how long a path must stay quiet before it is handed to
	// the pipeline, so partial copies are not read.
	settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher for dir that calls process per new file.
func NewWatcher(dir string, process ProcessFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:     dir,
		process: process,
		logger:  logger,
		settle:  500 * time.Millisecond,
		pending: make(map[string]*time.Timer),
	}
}

// Run watches until the context is cancelled. Create and Write events
// for the same path are coalesced: each event resets that path's settle
// timer, and the file is processed once when it stops changing.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	defer w.stopPending()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching inbox", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			ext := strings.ToLower(filepath.Ext(event.Name))
			if !acceptedExtensions[ext] {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("inbox watcher error", "error", err)
		}
	}
}

// schedule arms the settle timer for a path, or pushes it back when the
// file is still being written. A burst of events for one drop produces
// exactly one process call.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.logger.Info("inbox document detected", "path", path)
		w.process(ctx, path)
	})
}

// stopPending cancels timers that have not fired yet.
func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}
