package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window for editors that write config files in several events.
const watchDebounce = 250 * time.Millisecond

// Watcher monitors a configuration file and delivers reloaded configs.
type Watcher struct {
	path   string
	logger *slog.Logger
	onLoad func(*Config)

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher builds a watcher for the config file at path. onLoad is invoked
// with each successfully reloaded and validated config.
func NewWatcher(path string, logger *slog.Logger, onLoad func(*Config)) *Watcher {
	return &Watcher{path: path, logger: logger, onLoad: onLoad}
}

// Run watches the config file's directory until ctx is cancelled. Invalid
// intermediate states are logged and skipped; the previous config stays
// in effect.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: most editors replace the file, which drops a
	// watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	// A debounce timer scheduled just before shutdown must not fire after
	// Run returns.
	defer w.stopDebounce()

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(watchDebounce, w.reload)
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}
}

func (w *Watcher) reload() {
	cfg, _, _, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload skipped",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
		return
	}
	w.logger.Info("config reloaded", slog.String("path", w.path))
	w.onLoad(cfg)
}
