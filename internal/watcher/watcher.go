// Package watcher reports changes to a repository's refs so cached history
// can be refreshed.
package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of writes a single git command makes.
const DefaultDebounce = 250 * time.Millisecond

// Event is a coalesced ref change.
type Event struct {
	// Paths lists the files that changed during the debounce window.
	Paths []string
}

// Watcher watches the git directory and its branch refs.
type Watcher struct {
	gitDir   string
	debounce time.Duration
	callback func(Event)
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	done     chan struct{}

	mu      sync.Mutex
	started bool
	closed  bool

	pendingMu sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer
}

// GitDir returns the git directory of the repository at repoPath: its .git
// directory, or repoPath itself for a bare repository.
func GitDir(repoPath string) (string, error) {
	dotGit := filepath.Join(repoPath, ".git")
	if fi, err := os.Stat(dotGit); err == nil && fi.IsDir() {
		return dotGit, nil
	}
	if _, err := os.Stat(filepath.Join(repoPath, "HEAD")); err == nil {
		return repoPath, nil
	}
	return "", fmt.Errorf("no git directory under %s", repoPath)
}

// New watches gitDir and every directory under gitDir/refs/heads, so nested
// branch names like feature/x are seen. callback runs once per debounce window
// in which ref files changed.
func New(gitDir string, debounce time.Duration, callback func(Event), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(gitDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch path %s: %w", gitDir, err)
	}

	w := &Watcher{
		gitDir:   gitDir,
		debounce: debounce,
		callback: callback,
		logger:   logger,
		watcher:  fw,
		done:     make(chan struct{}),
		pending:  make(map[string]struct{}),
	}
	if _, err := w.addTree(filepath.Join(gitDir, "refs", "heads")); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches root and every directory below it. It returns the ref files
// already present, which may have been written before the watch existed.
func (w *Watcher) addTree(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", path, err)
		}
		return nil
	})
	return files, err
}

// Start starts watching for events.
func (w *Watcher) Start() error {
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

// Close stops watching and cancels a pending callback.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.started {
		close(w.done)
	}

	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) watch() {
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
			w.logger.Warn("watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	if !relevant(w.gitDir, event.Name) {
		return
	}

	names := []string{event.Name}
	if event.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
			files, err := w.addTree(event.Name)
			if err != nil {
				w.logger.Warn("watch new ref directory", "path", event.Name, "error", err)
			}
			names = append(names, files...)
		}
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	for _, name := range names {
		w.pending[name] = struct{}{}
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	w.logger.Debug("refs changed", "paths", len(paths))
	w.callback(Event{Paths: paths})
}

// relevant reports whether a change to name can move a branch or HEAD.
func relevant(gitDir, name string) bool {
	rel, err := filepath.Rel(gitDir, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasSuffix(rel, ".lock") {
		return false
	}
	switch rel {
	case "HEAD", "packed-refs", "ORIG_HEAD", "FETCH_HEAD":
		return true
	}
	return strings.HasPrefix(rel, "refs/heads/")
}
