// Package watch summarizes text files as they appear in a directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Matcher decides whether a path relative to the watched directory is handled.
type Matcher func(relPath string) bool

type Options struct {
	// MaxConcurrent bounds the number of files handled at once.
	MaxConcurrent int
	// Settle is how long a file must stay quiet before it is handled.
	Settle time.Duration
}

type Watcher struct {
	dir       string
	handler   Handler
	match     Matcher
	settle    time.Duration
	watcher   *fsnotify.Watcher
	semaphore chan struct{}
	logger    *slog.Logger
	wg        sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New starts watching dir. Call Start to process events and Stop to release
// the underlying watcher.
func New(dir string, match Matcher, handler Handler, opts Options, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		dir:       dir,
		handler:   handler,
		match:     match,
		settle:    opts.Settle,
		watcher:   fw,
		semaphore: make(chan struct{}, opts.MaxConcurrent),
		logger:    logger,
		pending:   make(map[string]*time.Timer),
	}, nil
}

// Start processes events until ctx ends, then waits for in-flight files.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching directory", "dir", w.dir, "max_concurrent", cap(w.semaphore))

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			w.logger.Info("waiting for in-flight summaries")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			rel, err := filepath.Rel(w.dir, event.Name)
			if err != nil || !w.match(rel) {
				w.logger.Debug("ignoring file", "path", event.Name)
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Stop closes the file watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// schedule (re)arms the settle timer of path so a burst of writes is handled once.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked(ctx, path)
}

// scheduleLocked requires w.mu. Only a timer that has not fired yet is
// re-armed; once a timer fires its callback owns the wait group slot, and a
// later write gets a timer of its own.
func (w *Watcher) scheduleLocked(ctx context.Context, path string) {
	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.settle)
		return
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		w.dispatch(ctx, path)
	})
	w.pending[path] = t
}

// dispatch runs on the timer goroutine and owns the wait group slot taken in
// schedule.
func (w *Watcher) dispatch(ctx context.Context, path string) {
	defer w.wg.Done()

	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-w.semaphore }()

	w.logger.Info("file settled", "path", path)
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error("failed to process file", "path", path, "error", err)
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		// A timer that already fired is finished by its own dispatch.
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}
