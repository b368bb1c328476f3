package replay

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"kai/internal/api"
	"kai/internal/client"
	"kai/internal/logging"
	"kai/internal/outbox"
	"kai/internal/testsupport"
)

// fakeBackend scripts pipeline outcomes per message text or upload path.
type fakeBackend struct {
	authenticated bool
	failTexts     map[string]error
	failUploads   map[string]error
	chats         []string
	uploads       []string
	notes         []api.NoteWrite
	deletedNotes  []string
	events        []api.EventWrite
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		authenticated: true,
		failTexts:     map[string]error{},
		failUploads:   map[string]error{},
	}
}

func connectivityErr() error {
	return &client.ConnectivityError{Endpoint: "/chat", Err: errors.New("no route to host")}
}

func (f *fakeBackend) Authenticated() bool { return f.authenticated }

func (f *fakeBackend) Chat(_ context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	if err := f.failTexts[req.Message]; err != nil {
		return nil, err
	}
	f.chats = append(f.chats, req.Message)
	return &api.ChatResponse{ConversationID: "c1", Reply: "ok"}, nil
}

func (f *fakeBackend) UploadMeeting(_ context.Context, audioPath string, _ api.UploadMetadata) (*api.TranscribeResponse, error) {
	if err := f.failUploads[audioPath]; err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, audioPath)
	return &api.TranscribeResponse{MeetingID: "m1", Status: "processing"}, nil
}

func (f *fakeBackend) CreateNote(_ context.Context, write api.NoteWrite) (*api.Note, error) {
	f.notes = append(f.notes, write)
	return &api.Note{ID: "n1", Title: write.Title}, nil
}

func (f *fakeBackend) UpdateNote(_ context.Context, id string, write api.NoteWrite) (*api.Note, error) {
	f.notes = append(f.notes, write)
	return &api.Note{ID: id, Title: write.Title}, nil
}

func (f *fakeBackend) DeleteNote(_ context.Context, id string) error {
	f.deletedNotes = append(f.deletedNotes, id)
	return nil
}

func (f *fakeBackend) CreateEvent(_ context.Context, write api.EventWrite) (*api.Event, error) {
	f.events = append(f.events, write)
	return &api.Event{ID: "e1", Title: write.Title}, nil
}

func (f *fakeBackend) UpdateEvent(_ context.Context, id string, write api.EventWrite) (*api.Event, error) {
	f.events = append(f.events, write)
	return &api.Event{ID: id, Title: write.Title}, nil
}

func (f *fakeBackend) DeleteEvent(_ context.Context, _ string) error {
	return nil
}

func newTestManager(t *testing.T, backend Backend) (*Manager, *outbox.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr, err := NewManager(cfg, store, backend, logging.NewNop())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return mgr, store
}

func TestDrainPartialFailureLeavesFailedInOrder(t *testing.T) {
	backend := newFakeBackend()
	mgr, store := newTestManager(t, backend)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		text := fmt.Sprintf("msg-%d", i)
		if i != 1 && i != 3 {
			backend.failTexts[text] = connectivityErr()
		}
		if _, err := store.EnqueueMessage(ctx, text, "", outbox.OriginWeb); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	result, err := mgr.Drain(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if result.Sent != 2 || result.Failed != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}

	remaining, err := store.Messages(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"msg-0", "msg-2", "msg-4"}
	if len(remaining) != len(want) {
		t.Fatalf("expected %d remaining, got %d", len(want), len(remaining))
	}
	for i, msg := range remaining {
		if msg.Payload != want[i] {
			t.Fatalf("position %d: %q, want %q", i, msg.Payload, want[i])
		}
	}
}

func TestDrainEmptyQueueIsNoOp(t *testing.T) {
	mgr, _ := newTestManager(t, newFakeBackend())

	result, err := mgr.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if result.Attempted() {
		t.Fatalf("empty drain should do nothing: %+v", result)
	}
}

func TestDrainRejectedMessageIsDropped(t *testing.T) {
	backend := newFakeBackend()
	mgr, store := newTestManager(t, backend)
	ctx := context.Background()

	backend.failTexts["bad"] = &client.StatusError{StatusCode: 422, Endpoint: "/chat", Message: "too long"}
	if _, err := store.EnqueueMessage(ctx, "bad", "", outbox.OriginWeb); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if _, err := mgr.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}

	remaining, err := store.Messages(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatal("rejected message should not stay queued")
	}
}

func TestDrainSkipsWithoutSession(t *testing.T) {
	backend := newFakeBackend()
	backend.authenticated = false
	mgr, store := newTestManager(t, backend)
	ctx := context.Background()

	if _, err := store.EnqueueMessage(ctx, "hello", "", outbox.OriginWeb); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	result, err := mgr.Drain(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if result.Attempted() {
		t.Fatalf("unauthenticated drain should be skipped: %+v", result)
	}
	if len(backend.chats) != 0 {
		t.Fatal("no network calls expected without a session")
	}

	remaining, _ := store.Messages(ctx)
	if len(remaining) != 1 {
		t.Fatal("queued message must survive a skipped drain")
	}
}

func TestSendMessageQueuesOnConnectivityFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.failTexts["offline message"] = connectivityErr()
	mgr, store := newTestManager(t, backend)
	ctx := context.Background()

	result, err := mgr.SendMessage(ctx, "offline message", "")
	if err != nil {
		t.Fatalf("send should degrade to queued: %v", err)
	}
	if !result.Queued || result.EntryID == "" {
		t.Fatalf("expected queued outcome: %+v", result)
	}

	messages, _ := store.Messages(ctx)
	if len(messages) != 1 || messages[0].Payload != "offline message" {
		t.Fatalf("message not queued: %+v", messages)
	}
}

func TestSendMessageSurfacesBackendRejection(t *testing.T) {
	backend := newFakeBackend()
	backend.failTexts["nope"] = &client.StatusError{StatusCode: 403, Endpoint: "/chat"}
	mgr, store := newTestManager(t, backend)

	_, err := mgr.SendMessage(context.Background(), "nope", "")
	if !errors.Is(err, client.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	messages, _ := store.Messages(context.Background())
	if len(messages) != 0 {
		t.Fatal("rejected message must not be queued")
	}
}

func TestUploadRetriesUntilBudgetExhausted(t *testing.T) {
	backend := newFakeBackend()
	backend.failUploads["/tmp/a.m4a"] = connectivityErr()
	mgr, store := newTestManager(t, backend)
	ctx := context.Background()

	up, err := store.EnqueueUpload(ctx, "/tmp/a.m4a", "", "", nil, nil)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	max := store.MaxUploadRetries()
	for i := 0; i < max; i++ {
		result, err := mgr.Drain(ctx)
		if err != nil {
			t.Fatalf("drain %d: %v", i, err)
		}
		if result.Failed != 1 {
			t.Fatalf("drain %d: expected 1 failure, got %+v", i, result)
		}
	}

	got, err := store.GetUpload(ctx, up.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RetryCount != max {
		t.Fatalf("retry count %d, want %d", got.RetryCount, max)
	}

	// Budget exhausted: the next drain skips it entirely.
	result, err := mgr.Drain(ctx)
	if err != nil {
		t.Fatalf("final drain: %v", err)
	}
	if result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("expected skip, got %+v", result)
	}
	if err := mgr.RetryUpload(ctx, up.ID); err == nil {
		t.Fatal("manual retry past the budget must be refused")
	}
}

func TestUploadSucceedsAfterConnectivityRestored(t *testing.T) {
	backend := newFakeBackend()
	backend.failUploads["/tmp/b.m4a"] = connectivityErr()
	mgr, store := newTestManager(t, backend)
	ctx := context.Background()

	up, err := store.EnqueueUpload(ctx, "/tmp/b.m4a", "", "", nil, nil)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if _, err := mgr.Drain(ctx); err != nil {
		t.Fatalf("offline drain: %v", err)
	}
	got, _ := store.GetUpload(ctx, up.ID)
	if got.Status != outbox.UploadFailed || got.RetryCount != 1 {
		t.Fatalf("expected one failed attempt, got %+v", got)
	}

	delete(backend.failUploads, "/tmp/b.m4a")
	result, err := mgr.Drain(ctx)
	if err != nil {
		t.Fatalf("online drain: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("expected upload to send, got %+v", result)
	}

	uploads, _ := store.Uploads(ctx)
	if len(uploads) != 0 {
		t.Fatal("sent upload should be removed")
	}
}

func TestRunActionQueuesAndDrainApplies(t *testing.T) {
	backend := newFakeBackend()
	mgr, store := newTestManager(t, backend)
	ctx := context.Background()

	payload := NotePayload{NoteWrite: api.NoteWrite{Title: "Groceries", Content: "milk"}}
	if _, err := mgr.RunAction(ctx, outbox.ActionCreateNote, payload); err != nil {
		t.Fatalf("run action: %v", err)
	}
	if len(backend.notes) != 1 || backend.notes[0].Title != "Groceries" {
		t.Fatalf("online action should apply immediately: %+v", backend.notes)
	}

	data := []byte(`{"id":"n9","title":"x","content":"y"}`)
	if _, err := store.EnqueueAction(ctx, outbox.ActionDeleteNote, data); err != nil {
		t.Fatalf("enqueue action: %v", err)
	}
	result, err := mgr.Drain(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("expected action replay, got %+v", result)
	}
	if len(backend.deletedNotes) != 1 || backend.deletedNotes[0] != "n9" {
		t.Fatalf("delete not applied: %+v", backend.deletedNotes)
	}

	actions, _ := store.Actions(ctx)
	if len(actions) != 0 {
		t.Fatal("replayed action should be removed")
	}
}
