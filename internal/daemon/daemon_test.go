package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"kai/internal/api"
	"kai/internal/logging"
	"kai/internal/outbox"
	"kai/internal/replay"
	"kai/internal/testsupport"
)

type stubBackend struct {
	authenticated bool
}

func (s *stubBackend) Authenticated() bool { return s.authenticated }

func (s *stubBackend) Chat(context.Context, api.ChatRequest) (*api.ChatResponse, error) {
	return &api.ChatResponse{ConversationID: "c1", Reply: "ok"}, nil
}

func (s *stubBackend) UploadMeeting(context.Context, string, api.UploadMetadata) (*api.TranscribeResponse, error) {
	return &api.TranscribeResponse{MeetingID: "m1", Status: "processing"}, nil
}

func (s *stubBackend) CreateNote(context.Context, api.NoteWrite) (*api.Note, error) {
	return &api.Note{ID: "n1"}, nil
}

func (s *stubBackend) UpdateNote(_ context.Context, id string, _ api.NoteWrite) (*api.Note, error) {
	return &api.Note{ID: id}, nil
}

func (s *stubBackend) DeleteNote(context.Context, string) error { return nil }

func (s *stubBackend) CreateEvent(context.Context, api.EventWrite) (*api.Event, error) {
	return &api.Event{ID: "e1"}, nil
}

func (s *stubBackend) UpdateEvent(_ context.Context, id string, _ api.EventWrite) (*api.Event, error) {
	return &api.Event{ID: id}, nil
}

func (s *stubBackend) DeleteEvent(context.Context, string) error { return nil }

func newTestDaemon(t *testing.T) (*Daemon, *outbox.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager, err := replay.NewManager(cfg, store, &stubBackend{authenticated: true}, logging.NewNop())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	d, err := New(cfg, "", store, manager, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, store
}

func apiGet(t *testing.T, d *Daemon, path string, out any) {
	t.Helper()
	resp, err := http.Get("http://" + d.api.addr() + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestSecondInstanceRefused(t *testing.T) {
	first, _ := newTestDaemon(t)
	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager, err := replay.NewManager(cfg, store, &stubBackend{}, logging.NewNop())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	// Same lock path as the running daemon.
	second, err := New(first.cfg, "", store, manager, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("second instance should fail to acquire the lock")
	}
}

func TestStatusEndpointReportsQueueCounts(t *testing.T) {
	d, store := newTestDaemon(t)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.EnqueueMessage(ctx, fmt.Sprintf("m-%d", i), "", outbox.OriginWeb); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	var status Status
	apiGet(t, d, "/api/status", &status)
	if !status.Running {
		t.Fatal("status should report running")
	}
	if !status.Authenticated {
		t.Fatal("status should report an active session")
	}
	if status.Queue.Messages != 3 {
		t.Fatalf("queue count %d, want 3", status.Queue.Messages)
	}
}

func TestDrainEndpointSendsQueuedWork(t *testing.T) {
	d, store := newTestDaemon(t)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := store.EnqueueMessage(ctx, "hello", "", outbox.OriginWeb); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	resp, err := http.Post("http://"+d.api.addr()+"/api/drain", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/drain: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("drain status %d", resp.StatusCode)
	}

	var result replay.DrainResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("expected 1 sent, got %+v", result)
	}

	remaining, _ := store.Messages(ctx)
	if len(remaining) != 0 {
		t.Fatal("queue should be empty after drain")
	}
}

func TestRetryEndpointEnforcesBudget(t *testing.T) {
	d, store := newTestDaemon(t)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	up, err := store.EnqueueUpload(ctx, "/tmp/a.m4a", "", "", nil, nil)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	for n := 0; n < store.MaxUploadRetries(); n++ {
		if err := store.UpdateUploadStatus(ctx, up.ID, outbox.UploadUploading, ""); err != nil {
			t.Fatalf("uploading: %v", err)
		}
		if err := store.UpdateUploadStatus(ctx, up.ID, outbox.UploadFailed, "timeout"); err != nil {
			t.Fatalf("failed: %v", err)
		}
	}

	resp, err := http.Post("http://"+d.api.addr()+"/api/queue/uploads/"+up.ID+"/retry", "application/json", nil)
	if err != nil {
		t.Fatalf("POST retry: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("exhausted retry should conflict, got %d", resp.StatusCode)
	}

	missing, err := http.Post("http://"+d.api.addr()+"/api/queue/uploads/nope/retry", "application/json", nil)
	if err != nil {
		t.Fatalf("POST retry missing: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing upload should 404, got %d", missing.StatusCode)
	}
}

func TestApplyConfigReloadsIntervalAndLogLevel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager, err := replay.NewManager(cfg, store, &stubBackend{}, logging.NewNop())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	d, err := New(cfg, "", store, manager, logging.NewNop(), WithLogLevel(levelVar))
	if err != nil {
		t.Fatalf("daemon: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	reloaded := *cfg
	reloaded.Sync.DrainInterval = 5
	reloaded.Logging.Level = "debug"
	d.applyConfig(&reloaded)

	if levelVar.Level() != slog.LevelDebug {
		t.Fatalf("log level not rewired, got %v", levelVar.Level())
	}
}

func TestAPITokenGuardsEndpoints(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Agent.APIToken = "local-secret"

	store := testsupport.MustOpenStore(t, cfg)
	manager, err := replay.NewManager(cfg, store, &stubBackend{}, logging.NewNop())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	d, err := New(cfg, "", store, manager, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	resp, err := http.Get("http://" + d.api.addr() + "/api/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated request should 401, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, "http://"+d.api.addr()+"/api/status", nil)
	req.Header.Set("Authorization", "Bearer local-secret")
	authed, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("authorized request should 200, got %d", authed.StatusCode)
	}
}
