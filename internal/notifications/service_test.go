package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"kai/internal/config"
	"kai/internal/notifications"
	"kai/internal/replay"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifySessionExpired(context.Background()); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCapturingService(t *testing.T, mutate func(*config.Config)) (notifications.Service, *captured) {
	t.Helper()
	var last captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		last = captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	if mutate != nil {
		mutate(&cfg)
	}
	return notifications.NewService(&cfg), &last
}

func TestDrainFinishedFormatsSummary(t *testing.T) {
	svc, last := newCapturingService(t, nil)

	err := svc.NotifyDrainFinished(context.Background(), replay.DrainResult{Sent: 4})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if last.title != "Kai - Queue Drained" {
		t.Fatalf("unexpected title: %q", last.title)
	}
	if last.message != "Sent 4 queued items" {
		t.Fatalf("unexpected message: %q", last.message)
	}

	err = svc.NotifyDrainFinished(context.Background(), replay.DrainResult{Sent: 1, Failed: 2, Skipped: 1})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if last.title != "Kai - Queue Drained (incomplete)" {
		t.Fatalf("unexpected title: %q", last.title)
	}
	if last.message != "Sent 1, failed 2, skipped 1" {
		t.Fatalf("unexpected message: %q", last.message)
	}
}

func TestSessionExpiredUsesHighPriority(t *testing.T) {
	svc, last := newCapturingService(t, nil)

	if err := svc.NotifySessionExpired(context.Background()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if last.priority != "high" {
		t.Fatalf("expected high priority, got %q", last.priority)
	}
	if last.tags != "kai,auth,expired" {
		t.Fatalf("unexpected tags: %q", last.tags)
	}
}

func TestEventTogglesSuppressDelivery(t *testing.T) {
	svc, last := newCapturingService(t, func(cfg *config.Config) {
		cfg.Notifications.DrainResults = false
		cfg.Notifications.Errors = false
	})

	if err := svc.NotifyDrainFinished(context.Background(), replay.DrainResult{Sent: 1}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "drain"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if last.title != "" {
		t.Fatalf("disabled events must not send, got %q", last.title)
	}
}

func TestNtfyFailureSurfacesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from ntfy failure")
	}
}
