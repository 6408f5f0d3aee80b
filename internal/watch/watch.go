// Package watch rebuilds the index when the search-data files of a
// documentation tree change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"docsearch/internal/index"
	"docsearch/internal/walkwalk"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when no debounce is configured.
const DefaultDebounce = 500 * time.Millisecond

// LoadFunc builds a fresh store from the documentation tree.
type LoadFunc func() (*index.Store, error)

// Watcher waits for changes in a search directory and hands every
// successfully rebuilt store to its apply callback.
type Watcher struct {
	dir      string
	debounce time.Duration
	load     LoadFunc
	apply    func(*index.Store)
	logger   *slog.Logger
}

// New returns a watcher for the documentation tree at root.
func New(root string, debounce time.Duration, load LoadFunc, apply func(*index.Store), logger *slog.Logger) (*Watcher, error) {
	dir, err := walkwalk.SearchDir(root)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{dir: dir, debounce: debounce, load: load, apply: apply, logger: logger}, nil
}

// Run watches until ctx is cancelled. Bursts of events within the debounce
// window trigger a single rebuild. A failed rebuild is logged and the
// previous store stays in place.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("Watching search data", slog.String("dir", w.dir), slog.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("Search data changed", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", slog.Any("error", err))

		case <-timer.C:
			w.rebuild()
		}
	}
}

func (w *Watcher) rebuild() {
	begin := time.Now()
	st, err := w.load()
	if err != nil {
		w.logger.Error("Rebuild failed, keeping previous index", slog.Any("error", err))
		return
	}
	w.apply(st)
	w.logger.Info("Index rebuilt",
		slog.Int("keys", st.Len()),
		slog.Int("entries", st.Entries()),
		slog.Duration("duration", time.Since(begin)),
	)
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasSuffix(filepath.Base(ev.Name), ".js")
}
