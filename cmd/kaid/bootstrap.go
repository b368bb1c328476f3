package main

import (
	"fmt"
	"log/slog"

	"kai/internal/client"
	"kai/internal/config"
	"kai/internal/daemon"
	"kai/internal/notifications"
	"kai/internal/outbox"
	"kai/internal/replay"
)

// buildDaemon wires the agent dependency graph: queue store, API client,
// replay manager with notification sink, and the daemon shell around them.
// logLevel may be nil when the caller has no runtime level handle.
func buildDaemon(cfg *config.Config, cfgPath string, logger *slog.Logger, logLevel *slog.LevelVar) (*daemon.Daemon, error) {
	store, err := outbox.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open queue store: %w", err)
	}

	apiClient, err := client.NewFromConfig(cfg, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build API client: %w", err)
	}

	notifier := notifications.NewReplayNotifier(notifications.NewService(cfg), logger)
	manager, err := replay.NewManager(cfg, store, apiClient, logger, replay.WithNotifier(notifier))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build replay manager: %w", err)
	}

	var opts []daemon.Option
	if logLevel != nil {
		opts = append(opts, daemon.WithLogLevel(logLevel))
	}
	d, err := daemon.New(cfg, cfgPath, store, manager, logger, opts...)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build daemon: %w", err)
	}
	return d, nil
}
