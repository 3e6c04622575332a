// Package watcher monitors the story store file for changes so display
// surfaces can refresh without polling. Writes land via rename, so the
// watcher listens on the containing directory and filters by name.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a single file and invokes a callback after changes settle.
type Watcher struct {
	path       string
	onChange   func()
	debounceMs int

	watcher *fsnotify.Watcher
	running bool
	stopCh  chan struct{}
	mu      sync.RWMutex

	// Debouncing state
	pendingAt time.Time
	pendingMu sync.Mutex
}

// New creates a watcher for path. onChange fires at most once per debounce
// window regardless of how many events the underlying write produced.
func New(path string, debounceMs int, onChange func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if debounceMs <= 0 {
		debounceMs = 250
	}

	return &Watcher{
		path:       path,
		onChange:   onChange,
		debounceMs: debounceMs,
		watcher:    fsWatcher,
		stopCh:     make(chan struct{}),
	}, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	go w.processEvents()
	go w.processDebounced()

	return nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	return w.watcher.Close()
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.pendingMu.Lock()
			w.pendingAt = time.Now()
			w.pendingMu.Unlock()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) processDebounced() {
	interval := time.Duration(w.debounceMs) * time.Millisecond
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.pendingMu.Lock()
			fire := !w.pendingAt.IsZero() && time.Since(w.pendingAt) >= interval
			if fire {
				w.pendingAt = time.Time{}
			}
			w.pendingMu.Unlock()

			if fire {
				w.onChange()
			}
		}
	}
}
