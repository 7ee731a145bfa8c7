// Package fswatcher reports debounced changes to a fixed set of files.
package fswatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/user/dpframe/pkg/ports"
)

// DefaultDebounce coalesces bursts of editor writes.
const DefaultDebounce = 200 * time.Millisecond

// ChangeFunc handles a batch of changed files.
type ChangeFunc func(ctx context.Context, paths []string) error

// Watcher watches the parent directories of its files, because editors
// often replace a file by renaming a new one over it.
type Watcher struct {
	files    map[string]bool
	onChange ChangeFunc
	logger   ports.Logger
	debounce time.Duration
	ready    chan struct{}
}

// New creates a watcher for files.
func New(files []string, onChange ChangeFunc, logger ports.Logger) *Watcher {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			set[abs] = true
		}
	}
	return &Watcher{
		files:    set,
		onChange: onChange,
		logger:   logger.WithComponent("watch"),
		debounce: DefaultDebounce,
		ready:    make(chan struct{}),
	}
}

// SetDebounce overrides the debounce interval.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Ready is closed once the watches are installed.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Start blocks until ctx is cancelled. Errors from onChange are logged
// and do not stop the watcher.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fswatcher: %w", err)
	}
	defer fw.Close() //nolint:errcheck

	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("fswatcher: watching %s: %w", dir, err)
		}
		w.logger.Debug("Watching %s", dir)
	}
	close(w.ready)

	// Starts stopped; reset on each relevant event.
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error: %v", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)
			if err := w.onChange(ctx, paths); err != nil {
				w.logger.Error("Applying changes failed: %v", err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
