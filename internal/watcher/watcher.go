package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PlanWatcher watches a single plan file for edits with debouncing. The
// file's directory is watched rather than the file itself, because editors
// typically save by writing a temp file and renaming it over the original.
type PlanWatcher struct {
	path     string
	debounce time.Duration
	onChange func(path string)
	watcher  *fsnotify.Watcher
	done     chan struct{}
	started  bool
	closed   bool
	mu       sync.Mutex
	timer    *time.Timer
	timerMu  sync.Mutex
}

// New creates a PlanWatcher for the plan file at path
func New(path string, debounce time.Duration, onChange func(path string)) (*PlanWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve plan path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch plan directory: %w", err)
	}

	return &PlanWatcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins delivering change notifications
func (w *PlanWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}
	w.started = true

	go w.watch()

	return nil
}

// Close stops watching and cancels any pending notification
func (w *PlanWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.started {
		close(w.done)
	}

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerMu.Unlock()

	return w.watcher.Close()
}

func (w *PlanWatcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("plan watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

// handleEvent filters directory events down to edits of the watched plan
func (w *PlanWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.timerMu.Lock()
		w.timer = nil
		w.timerMu.Unlock()

		w.onChange(w.path)
	})
}
