package main

import (
	"context"
	"testing"

	"kai/internal/logging"
	"kai/internal/testsupport"
)

func TestBuildDaemonWiresDependencies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	d, err := buildDaemon(cfg, "", logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("buildDaemon: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	d.Stop()
}
