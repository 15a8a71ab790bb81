// Package watcher ingests PDFs dropped into an inbox directory.
package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// DefaultDebounce is how long a path must be quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches one directory and ingests each PDF created in or moved
// into it. Files are ingested one at a time.
type Watcher struct {
	dir      string
	ingest   driving.IngestService
	out      io.Writer
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*pendingFile
}

// New creates a watcher over dir that reports each file on out.
func New(dir string, ingest driving.IngestService, out io.Writer) *Watcher {
	return &Watcher{
		dir:      dir,
		ingest:   ingest,
		out:      out,
		debounce: DefaultDebounce,
		pending:  make(map[string]*pendingFile),
	}
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run blocks until ctx is cancelled. Ingestion failures are reported and
// the watcher keeps running.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for PDFs", w.dir)

	ready := make(chan string)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-ready:
				w.ingestFile(ctx, path)
			}
		}
	}()
	defer wg.Wait()
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := handleFsEvent(event); ok {
				w.schedule(ctx, path, ready)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// handleFsEvent returns the path to ingest for event, if any.
// Writes count so that a file still being copied keeps its timer alive.
func handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	if !strings.EqualFold(filepath.Ext(base), ".pdf") {
		return "", false
	}
	return event.Name, true
}

// pendingFile is one debounce window. Its identity tells a live timer
// from one that was superseded after it had already fired.
type pendingFile struct {
	timer *time.Timer
}

// schedule restarts the debounce window for path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.pending[path]; ok {
		old.timer.Stop()
	}
	entry := &pendingFile{}
	entry.timer = time.AfterFunc(w.debounce, func() { w.fire(ctx, path, entry, ready) })
	w.pending[path] = entry
}

// fire hands path to the ingest loop unless entry has been replaced by a
// later event for the same path.
func (w *Watcher) fire(ctx context.Context, path string, entry *pendingFile, ready chan<- string) {
	w.mu.Lock()
	if w.pending[path] != entry {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	select {
	case ready <- path:
	case <-ctx.Done():
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, entry := range w.pending {
		entry.timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		// Renamed away or deleted before the debounce fired.
		logger.Debug("watcher: skipping %s: %v", path, err)
		return
	}
	defer f.Close()

	result, err := w.ingest.Ingest(ctx, name, f)
	if err != nil {
		logger.Error("watcher: %s: %v", name, err)
		fmt.Fprintf(w.out, "%s: ingest failed: %v\n", name, err)
		return
	}
	fmt.Fprintf(w.out, "%s -> %s (%d pages, %d chunks)\n",
		name, result.Namespace, result.PageCount, result.ChunkCount)
}
