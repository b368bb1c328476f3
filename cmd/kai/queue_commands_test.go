package main

import (
	"context"
	"testing"

	"kai/internal/logging"
	"kai/internal/outbox"
)

func TestQueueStatusAndListEmpty(t *testing.T) {
	configPath := writeTestConfig(t, "http://127.0.0.1:1")

	out, _, err := runCLI(t, configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Messages: 0/100")

	out, _, err = runCLI(t, configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueListAndClearWithEntries(t *testing.T) {
	configPath := writeTestConfig(t, "http://127.0.0.1:1")
	cfg := loadTestConfig(t, configPath)

	store, err := outbox.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.EnqueueMessage(ctx, "remind me tomorrow", "", outbox.OriginWeb); err != nil {
		t.Fatalf("enqueue message: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, _, err := runCLI(t, configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "remind me tomorrow")

	out, _, err = runCLI(t, configPath, "queue", "clear")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Queue cleared")

	out, _, err = runCLI(t, configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status after clear: %v", err)
	}
	requireContains(t, out, "Messages: 0/100")
}

func TestQueueDrainWithoutSession(t *testing.T) {
	configPath := writeTestConfig(t, "http://127.0.0.1:1")

	// No token file exists, so the drain skips everything.
	out, _, err := runCLI(t, configPath, "queue", "drain")
	if err != nil {
		t.Fatalf("queue drain: %v", err)
	}
	requireContains(t, out, "Drained: 0 sent, 0 failed, 0 skipped")
}

func TestQueueRetryUnknownUpload(t *testing.T) {
	configPath := writeTestConfig(t, "http://127.0.0.1:1")

	_, _, err := runCLI(t, configPath, "queue", "retry", "missing-id")
	if err == nil {
		t.Fatal("expected error for unknown upload id")
	}
}
