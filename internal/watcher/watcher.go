// Package watcher invalidates cached snapshots when the rpm database changes
// outside of nebula, e.g. after a manual "dnf install".
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of writes one transaction produces
const DefaultDebounce = 2 * time.Second

// ChangeFunc is called once per debounced burst of database changes
type ChangeFunc func(ctx context.Context) error

// Watcher watches the rpm database directory
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange ChangeFunc
	logger   *zerolog.Logger

	mu    sync.Mutex
	fired int
}

// New creates a watcher for dir
func New(dir string, debounce time.Duration, onChange ChangeFunc, log *zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Watcher{dir: dir, debounce: debounce, onChange: onChange, logger: log}
}

// Fired returns how many times onChange has been called
func (w *Watcher) Fired() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

// Run blocks until ctx is cancelled, calling onChange after each quiet
// period that follows one or more relevant events. ready, if non-nil, is
// closed once the directory is being watched.
func (w *Watcher) Run(ctx context.Context, ready chan<- struct{}) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.logger.Info().Str("dir", w.dir).Dur("debounce", w.debounce).Msg("watching package database")
	if ready != nil {
		close(ready)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("package database changed")
			timer.Reset(w.debounce)

		case <-timer.C:
			w.fire(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	w.mu.Lock()
	w.fired++
	w.mu.Unlock()

	if err := w.onChange(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("change handler failed")
		return
	}
	w.logger.Info().Msg("package database changed, cache invalidated")
}

// relevant filters out permission changes, sqlite shared-memory files and
// lock files, which change on plain reads.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	base := filepath.Base(event.Name)
	switch {
	case strings.HasSuffix(base, "-shm"):
		return false
	case strings.HasSuffix(base, ".lock"), strings.HasPrefix(base, "__db."):
		return false
	}
	return true
}
