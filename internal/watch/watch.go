// Package watch triggers reconciliation passes when source documents change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period that must follow the last change
// before a pass starts.
const DefaultDebounce = 500 * time.Millisecond

// Filter selects the files whose changes trigger a pass.
type Filter struct {
	Ext        string
	SkipPrefix string
}

// Match reports whether a change to path is relevant.
func (f Filter) Match(path string) bool {
	name := filepath.Base(path)
	if f.SkipPrefix != "" && strings.HasPrefix(name, f.SkipPrefix) {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(f.Ext))
}

// Watch watches dir and calls fn after each debounced burst of matching
// changes until ctx is cancelled. fn runs on the watching goroutine, so
// passes never overlap; events arriving meanwhile start another pass.
func Watch(ctx context.Context, dir string, filter Filter, debounce time.Duration, logger *slog.Logger, fn func(context.Context)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", dir), slog.Duration("debounce", debounce))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			timer = nil
			fire = nil
			fn(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || !filter.Match(ev.Name) {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
