// Package watcher monitors the documents directory and ingests new or
// changed files automatically.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kbase-labs/kbase/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is
// handed to the callback. Editors and copies produce bursts of write
// events; only the last one matters.
const DefaultDebounce = 500 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to watch.
	Dir string

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration

	// Supported filters paths before they are scheduled.
	Supported func(path string) bool

	// OnFile is invoked once per quiet file, after the debounce window.
	OnFile func(ctx context.Context, path string)
}

// Watcher ingests files as they appear in a directory.
type Watcher struct {
	cfg Config
	fs  *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher for cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watcher: directory is required")
	}
	if cfg.OnFile == nil {
		return nil, fmt.Errorf("watcher: OnFile callback is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Supported == nil {
		cfg.Supported = func(string) bool { return true }
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if err := fs.Add(cfg.Dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watcher: watch %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		cfg:    cfg,
		fs:     fs,
		timers: make(map[string]*time.Timer),
	}, nil
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("Watching %s", w.cfg.Dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.cfg.Supported(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		logger.Debug("File settled: %s", path)
		w.cfg.OnFile(ctx, path)
	})
}

// Close stops the underlying filesystem watcher and cancels pending
// timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	return w.fs.Close()
}
