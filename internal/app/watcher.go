package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FolderWatcher watches the open folder for reconstruction files
// appearing, changing, or disappearing, and triggers a callback so the
// navigation list can be refreshed. Events are debounced because saves
// and copies arrive as bursts.
type FolderWatcher struct {
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	extensions []string

	mu       sync.Mutex
	folder   string
	timer    *time.Timer
	onChange func()
	stopped  bool

	stopCh chan struct{}
}

// NewFolderWatcher creates a watcher reacting to files with the given
// extensions. A zero debounce falls back to 250ms.
func NewFolderWatcher(debounce time.Duration, extensions []string) (*FolderWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &FolderWatcher{
		watcher:    w,
		debounce:   debounce,
		extensions: extensions,
		stopCh:     make(chan struct{}),
	}, nil
}

// OnChange sets the callback to invoke after a debounced change burst.
// The callback is called from a background goroutine - use appropriate
// synchronization if updating UI.
func (w *FolderWatcher) OnChange(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// Watch switches the watcher to a folder, replacing any previous one.
func (w *FolderWatcher) Watch(folder string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.folder != "" {
		// Best effort: the old folder may already be gone.
		_ = w.watcher.Remove(w.folder)
	}
	if err := w.watcher.Add(folder); err != nil {
		return fmt.Errorf("failed to watch %s: %w", folder, err)
	}
	w.folder = folder
	return nil
}

// Start begins processing events in a background goroutine.
func (w *FolderWatcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher and releases its OS resources. Idempotent, and
// terminal: a stopped watcher cannot be restarted.
func (w *FolderWatcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	close(w.stopCh)
	w.watcher.Close()
}

func (w *FolderWatcher) watchLoop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.bump()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// relevant filters events down to reconstruction files.
func (w *FolderWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// bump restarts the debounce timer; the callback fires once the burst
// has been quiet for the debounce interval.
func (w *FolderWatcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		callback := w.onChange
		w.mu.Unlock()
		if callback != nil {
			callback()
		}
	})
}
