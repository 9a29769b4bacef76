// Package watch re-runs a callback when files matching schema globs change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches editor save bursts into one run.
const DefaultDebounce = 200 * time.Millisecond

// Watcher observes the directories that can hold matches of a glob set.
type Watcher struct {
	fs       *fsnotify.Watcher
	patterns []string
	debounce time.Duration
	log      *zap.Logger
}

// New registers watches for every directory under the static base of each
// pattern. A nil logger is replaced with zap.NewNop.
func New(patterns []string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{fs: fw, debounce: debounce, log: log}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		w.patterns = append(w.patterns, filepath.Clean(p))
		base, _ := doublestar.SplitPattern(filepath.ToSlash(filepath.Clean(p)))
		if err := w.addTree(filepath.FromSlash(base)); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	if len(w.fs.WatchList()) == 0 {
		_ = fw.Close()
		return nil, errors.New("watch: no existing directory to watch")
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return nil
}

// Relevant reports whether path matches one of the watched patterns.
func (w *Watcher) Relevant(path string) bool {
	path = filepath.Clean(path)
	for _, p := range w.patterns {
		if ok, _ := doublestar.PathMatch(p, path); ok {
			return true
		}
	}
	return false
}

// Run blocks until ctx is done, calling onChange once per debounced burst
// of relevant events. The underlying watcher is closed on return.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	defer w.fs.Close()

	// с go1.23 Reset сбрасывает несчитанное срабатывание, дренаж не нужен
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.log.Warn("watch: cannot follow new directory", zap.String("dir", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if ev.Op == fsnotify.Chmod || !w.Relevant(ev.Name) {
				continue
			}
			w.log.Debug("watch: change", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch: error", zap.Error(err))

		case <-timer.C:
			onChange(ctx)
		}
	}
}
