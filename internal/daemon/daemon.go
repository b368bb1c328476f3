package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"kai/internal/config"
	"kai/internal/logging"
	"kai/internal/outbox"
	"kai/internal/replay"
)

// Daemon runs the background sync agent: the drain loop, the local status
// API, and the config watcher. A file lock in the state directory enforces
// one agent per queue database.
type Daemon struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	store   *outbox.Store
	manager *replay.Manager

	lockPath string
	lock     *flock.Flock

	api      *apiServer
	watcher  *config.Watcher
	logLevel *slog.LevelVar

	running atomic.Bool
	cancel  context.CancelFunc
}

// Option adjusts optional daemon wiring.
type Option func(*Daemon)

// WithLogLevel hands the daemon the logger's level handle so config reloads
// can change verbosity without a restart.
func WithLogLevel(level *slog.LevelVar) Option {
	return func(d *Daemon) {
		d.logLevel = level
	}
}

// New constructs a daemon with initialized dependencies. cfgPath may be
// empty when no config file exists; the watcher is then disabled.
func New(cfg *config.Config, cfgPath string, store *outbox.Store, manager *replay.Manager, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil || manager == nil {
		return nil, errors.New("daemon requires config, store, and replay manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		cfgPath:  cfgPath,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		manager:  manager,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api

	if cfgPath != "" {
		d.watcher = config.NewWatcher(cfgPath, logger, d.applyConfig)
	}
	return d, nil
}

// Start acquires the instance lock and launches the background loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another kai agent is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.manager.Start(runCtx)
	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			d.manager.Stop()
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}
	if d.watcher != nil {
		go func() {
			if err := d.watcher.Run(runCtx); err != nil {
				d.logger.Warn("config watcher stopped", logging.Error(err))
			}
		}()
	}

	d.running.Store(true)
	d.logger.Info("kai agent started", slog.String("lock", d.lockPath))
	return nil
}

// Stop halts the loops and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.manager.Stop()
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release agent lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("kai agent stopped")
}

// Close stops the daemon and releases the queue store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// applyConfig picks up reloadable settings after a config file change.
func (d *Daemon) applyConfig(cfg *config.Config) {
	d.manager.SetDrainInterval(time.Duration(cfg.Sync.DrainInterval) * time.Second)
	if d.logLevel != nil {
		d.logLevel.Set(logging.ParseLevel(cfg.Logging.Level))
	}
	d.logger.Info("configuration reloaded",
		slog.Int("drain_interval", cfg.Sync.DrainInterval),
		slog.String("log_level", cfg.Logging.Level))
}

// Status is the agent state reported by the local API.
type Status struct {
	Running       bool                `json:"running"`
	Authenticated bool                `json:"authenticated"`
	Queue         outbox.Counts       `json:"queue"`
	LastDrain     *replay.DrainResult `json:"last_drain,omitempty"`
	QueueDBPath   string              `json:"queue_db_path"`
	LockFilePath  string              `json:"lock_file_path"`
}
