// Package watch observes the project directory during an agent run and
// records the migration and seed files the agent creates.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// artifactDirs are the project subdirectories the agent writes into.
var artifactDirs = []string{"migrations", "seeds"}

// Watcher tracks SQL files created or modified under the project's
// artifact directories. A run can proceed without one: construction
// failures degrade to a nil watcher whose methods are all no-ops.
type Watcher struct {
	projectPath string
	watcher     *fsnotify.Watcher

	mu    sync.RWMutex
	files map[string]struct{}

	done chan struct{}
	once sync.Once
}

// New creates a Watcher for the given project directory. The artifact
// directories are created up front; fsnotify cannot watch paths that do
// not exist yet.
func New(projectPath string) (*Watcher, error) {
	for _, dir := range artifactDirs {
		if err := os.MkdirAll(filepath.Join(projectPath, dir), 0755); err != nil {
			return nil, err
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		projectPath: projectPath,
		watcher:     fsw,
		files:       make(map[string]struct{}),
		done:        make(chan struct{}),
	}

	for _, dir := range artifactDirs {
		if err := fsw.Add(filepath.Join(projectPath, dir)); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	go w.watch()

	return w, nil
}

// watch consumes filesystem events until Close.
func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".sql") {
				continue
			}
			rel, err := filepath.Rel(w.projectPath, event.Name)
			if err != nil {
				rel = event.Name
			}
			w.mu.Lock()
			w.files[rel] = struct{}{}
			w.mu.Unlock()
		case <-w.watcher.Errors:
			// Keep watching; a missed artifact only affects the report.
		}
	}
}

// Count returns the number of distinct artifact files observed so far.
func (w *Watcher) Count() int {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.files)
}

// Files returns the observed artifact paths relative to the project
// directory, sorted.
func (w *Watcher) Files() []string {
	if w == nil {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Close stops watching. Safe to call more than once and on a nil Watcher.
func (w *Watcher) Close() {
	if w == nil {
		return
	}
	w.once.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}
