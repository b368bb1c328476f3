package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"kai/internal/config"
	"kai/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, cfgPath, exists, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare state directories: %v", err)
	}

	logger, logLevel, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	// Without a config file there is nothing to watch for reloads.
	if !exists {
		cfgPath = ""
	}

	d, err := buildDaemon(cfg, cfgPath, logger, logLevel)
	if err != nil {
		log.Fatalf("build agent: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start agent: %v", err)
	}

	<-ctx.Done()
	logger.Info("kaid shutting down")
	d.Stop()
}
