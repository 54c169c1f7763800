package cli

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for more changes before
// re-running.
const DefaultDebounce = 200 * time.Millisecond

// watchExtensions are the files whose changes trigger a re-run.
var watchExtensions = map[string]bool{".cue": true, ".yaml": true, ".yml": true}

// watchRoot is a directory to watch, optionally with its subdirectories.
type watchRoot struct {
	Path      string
	Recursive bool
}

// watcher re-runs a function when spec or document files change.
type watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

// newWatcher registers every root before returning, so changes made after
// it returns are never missed.
func newWatcher(roots []watchRoot, debounce time.Duration, logger *slog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &watcher{fsw: fsw, debounce: debounce, logger: logger}
	for _, root := range roots {
		if root.Recursive {
			err = w.addRecursive(root.Path)
		} else {
			err = fsw.Add(root.Path)
		}
		if err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addRecursive watches dir and every directory below it, skipping hidden
// directories.
func (w *watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

// Run calls fn after each burst of relevant changes until ctx is done.
func (w *watcher) Run(ctx context.Context, fn func()) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
					continue
				}
			}
			if !watchExtensions[filepath.Ext(event.Name)] {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-fire:
			fire = nil
			fn()
		}
	}
}

// Close stops watching.
func (w *watcher) Close() error {
	return w.fsw.Close()
}
