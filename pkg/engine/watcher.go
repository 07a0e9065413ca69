package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/barrelgen/pkg/parser"
)

// WatchOptions configures the file watcher.
type WatchOptions struct {
	// DebounceMs groups rapid change bursts into one pipeline run.
	DebounceMs int
}

// DefaultWatchOptions returns conventional watch settings.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{DebounceMs: 200}
}

// Watcher re-runs the pipeline whenever source files under the engine's
// root change. Changed paths are invalidated in the engine's caches, so a
// re-run only re-parses what actually changed.
type Watcher struct {
	engine  *Engine
	watcher *fsnotify.Watcher
	options WatchOptions
	logger  *slog.Logger

	// onRun receives each completed run's report; optional.
	onRun func(*Report)

	debounceMu    sync.Mutex
	debounceTimer *time.Timer

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a Watcher around an engine. onRun may be nil.
func NewWatcher(eng *Engine, options WatchOptions, onRun func(*Report), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if options.DebounceMs == 0 {
		options.DebounceMs = 200
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		engine:   eng,
		watcher:  fsWatcher,
		options:  options,
		onRun:    onRun,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

// Start watches the engine's root and every subdirectory, then runs the
// event loop in the background.
func (w *Watcher) Start(ctx context.Context) error {
	root := w.engine.Config().Root

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if w.shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set up watches: %w", err)
	}

	w.logger.Info("watching for changes", "root", root)

	go w.eventLoop(ctx)
	return nil
}

// Stop stops the watcher. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name

	// New directories must be added to the watch set before any file
	// inside them can be seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() && !w.shouldIgnoreDir(path) {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			w.scheduleRun(ctx)
			return
		}
	}

	if parser.DetectLanguage(path) == parser.LanguageUnknown {
		return
	}
	// Ignore our own barrel writes: rewriting them would loop forever.
	if filepath.Base(path) == w.engine.Config().BarrelName {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	w.engine.Invalidate(path)
	w.scheduleRun(ctx)
}

// scheduleRun (re)arms the debounce timer; the pipeline runs once per
// quiet period, not once per event.
func (w *Watcher) scheduleRun(ctx context.Context) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(
		time.Duration(w.options.DebounceMs)*time.Millisecond,
		func() {
			report, err := w.engine.Run(ctx)
			if err != nil {
				w.logger.Error("watch run failed", "error", err)
				return
			}
			if w.onRun != nil {
				w.onRun(report)
			}
		},
	)
}

func (w *Watcher) shouldIgnoreDir(path string) bool {
	switch filepath.Base(path) {
	case "node_modules", ".git", "dist", "build", ".next", ".barrelgen":
		return true
	}
	return false
}
