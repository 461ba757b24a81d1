package rulesource

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"petrovich.ru/petrovich/inflector"
	"petrovich.ru/petrovich/logger"
	"petrovich.ru/petrovich/rules"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher rebuilds the engine whenever one of the watched files changes.
// A table that fails to load leaves the current engine in place.
type Watcher struct {
	source   rules.Source
	target   *inflector.Reloadable
	files    map[string]bool
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
}

func NewWatcher(source rules.Source, target *inflector.Reloadable, paths ...string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		source:   source,
		target:   target,
		files:    make(map[string]bool, len(paths)),
		debounce: DefaultDebounce,
		watcher:  fsWatcher,
		logger:   logger.NewLogger("Rules watcher"),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsWatcher.Close()
			return nil, err
		}
		w.files[abs] = true
		// editors tend to replace files, so the directory is watched
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return nil, err
		}
		dirs[dir] = true
	}
	return w, nil
}

func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run blocks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
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
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Rule file changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Err(err).Msg("File watcher error")
		case <-fire:
			fire = nil
			if _, err := w.Reload(ctx); err != nil {
				w.logger.Err(err).Msg("Failed to reload rule table, keeping the current one")
			}
		}
	}
}

// Reload loads the table again and swaps the engine when its content has
// changed. It reports whether a swap happened.
func (w *Watcher) Reload(ctx context.Context) (bool, error) {
	table, err := rules.LoadSource(ctx, w.source)
	if err != nil {
		return false, err
	}
	if current := w.target.Get(); current != nil && current.Rules().Fingerprint() == table.Fingerprint() {
		w.logger.Debug().Msg("Rule table unchanged")
		return false, nil
	}
	for _, skipped := range table.Skipped() {
		w.logger.Warn().Str("record", skipped.String()).Msg("Skipped rule record")
	}
	w.target.Swap(inflector.NewFromRules(table))
	w.logger.Info().
		Str("source", w.source.Name()).
		Int("rules", table.Len()).
		Uint64("fingerprint", table.Fingerprint()).
		Msg("Rule table reloaded")
	return true, nil
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
