package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StateWatcher watches annotation sidecar files for external changes and
// triggers reload callbacks. Watches the parent directory rather than the
// file itself: external tools replace sidecars via rename, which would
// otherwise drop the watch.
type StateWatcher struct {
	watcher   *fsnotify.Watcher
	mu        sync.Mutex
	callbacks map[string]func(string)
	dirs      map[string]int
	debounce  time.Duration
	timers    map[string]*time.Timer
}

// NewStateWatcher creates a new sidecar watcher
func NewStateWatcher(debounce time.Duration) (*StateWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &StateWatcher{
		watcher:   watcher,
		callbacks: make(map[string]func(string)),
		dirs:      make(map[string]int),
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Watch registers a sidecar file for reload notifications.
// callback is called with the file path after changes settle.
func (sw *StateWatcher) Watch(file string, callback func(string)) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	absPath, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", file, err)
	}

	dir := filepath.Dir(absPath)
	if sw.dirs[dir] == 0 {
		if err := sw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	sw.dirs[dir]++
	sw.callbacks[absPath] = callback

	return nil
}

// Start begins dispatching change events
func (sw *StateWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-sw.watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					sw.handleChange(event.Name)
				}

			case err, ok := <-sw.watcher.Errors:
				if !ok {
					return
				}
				fmt.Printf("Watcher error: %v\n", err)
			}
		}
	}()
}

// handleChange debounces a change event for a registered sidecar
func (sw *StateWatcher) handleChange(filePath string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	callback, exists := sw.callbacks[filePath]
	if !exists {
		return
	}

	if timer, exists := sw.timers[filePath]; exists {
		timer.Stop()
	}

	sw.timers[filePath] = time.AfterFunc(sw.debounce, func() {
		callback(filePath)
	})
}

// Unwatch removes a sidecar registration
func (sw *StateWatcher) Unwatch(file string) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	absPath, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	if _, exists := sw.callbacks[absPath]; !exists {
		return nil
	}

	delete(sw.callbacks, absPath)
	if timer, exists := sw.timers[absPath]; exists {
		timer.Stop()
		delete(sw.timers, absPath)
	}

	dir := filepath.Dir(absPath)
	sw.dirs[dir]--
	if sw.dirs[dir] <= 0 {
		delete(sw.dirs, dir)
		if err := sw.watcher.Remove(dir); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the watcher
func (sw *StateWatcher) Close() error {
	return sw.watcher.Close()
}
