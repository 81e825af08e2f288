// Package watch re-runs improvement on file changes, debounced so a
// burst of writes (editor save, go fmt, git checkout) triggers one run.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"maestro/internal/errors"
	"maestro/internal/logging"
)

var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Watcher observes a directory tree and invokes a callback with the
// batch of changed paths after each quiet period.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *logging.Logger
}

// New creates a Watcher over root. Debounce must be positive.
func New(root string, debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	if debounce <= 0 {
		return nil, errors.NewValidationError("debounce must be positive").
			WithField("watch.debounce_ms").WithValue(debounce.String())
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Watcher{root: root, debounce: debounce, logger: logger}, nil
}

// Run blocks until ctx is cancelled, invoking fn with the sorted,
// root-relative paths of files that changed since the last invocation.
// Writes under skipped directories (.git, vendor, hidden dirs) are
// ignored; directories created while watching are picked up.
func (w *Watcher) Run(ctx context.Context, fn func(paths []string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			rel, skip := w.relevant(ev.Name)
			if skip {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				// New directories need their own watches.
				if err := w.addTree(fw, ev.Name); err != nil {
					w.logger.Warn("watching new path failed", "path", rel, "error", err.Error())
				}
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				pending[rel] = true
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				timerC = timer.C
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err.Error())

		case <-timerC:
			timerC = nil
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)

			w.logger.Info("changes settled", "paths", len(paths))
			fn(paths)
		}
	}
}

// addTree registers path and every non-skipped directory beneath it.
// Non-directory paths are ignored; fsnotify watches parents, not files.
func (w *Watcher) addTree(fw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// The path may already be gone; watch what remains.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if skippedDirs[d.Name()] || (strings.HasPrefix(d.Name(), ".") && p != path && p != w.root) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return errors.Wrap(err, "watching "+p)
		}
		return nil
	})
}

// relevant converts an event path to root-relative form and reports
// whether it should be ignored.
func (w *Watcher) relevant(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", true
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if skippedDirs[part] || (strings.HasPrefix(part, ".") && part != ".") {
			return rel, true
		}
	}
	return rel, false
}
