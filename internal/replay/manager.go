package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kai/internal/api"
	"kai/internal/client"
	"kai/internal/config"
	"kai/internal/logging"
	"kai/internal/outbox"
)

// Backend is the slice of the API client the replay layer drives.
type Backend interface {
	Authenticated() bool
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	UploadMeeting(ctx context.Context, audioPath string, meta api.UploadMetadata) (*api.TranscribeResponse, error)
	CreateNote(ctx context.Context, write api.NoteWrite) (*api.Note, error)
	UpdateNote(ctx context.Context, id string, write api.NoteWrite) (*api.Note, error)
	DeleteNote(ctx context.Context, id string) error
	CreateEvent(ctx context.Context, write api.EventWrite) (*api.Event, error)
	UpdateEvent(ctx context.Context, id string, write api.EventWrite) (*api.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Notifier receives replay lifecycle events. The notifications package
// provides the ntfy implementation; a nil Notifier disables events.
type Notifier interface {
	DrainFinished(ctx context.Context, result DrainResult)
	SessionExpired(ctx context.Context)
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	Sent    int       `json:"sent"`
	Failed  int       `json:"failed"`
	Skipped int       `json:"skipped"`
	When    time.Time `json:"when"`
}

// Attempted reports whether the drain had anything to do.
func (r DrainResult) Attempted() bool {
	return r.Sent+r.Failed+r.Skipped > 0
}

// Manager sends operations through the pipeline and falls back to the
// offline queue on connectivity failure. Drain replays queued work in
// insertion order.
type Manager struct {
	store    *outbox.Store
	backend  Backend
	notifier Notifier
	logger   *slog.Logger

	origin        outbox.Origin
	drainInterval time.Duration
	backoffMax    time.Duration

	drainMu sync.Mutex // one drain at a time

	mu         sync.Mutex
	lastResult *DrainResult

	kick chan struct{}
	done chan struct{}
	stop context.CancelFunc
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier attaches a lifecycle event sink.
func WithNotifier(notifier Notifier) Option {
	return func(m *Manager) {
		m.notifier = notifier
	}
}

// NewManager builds a replay manager over the queue store and backend.
func NewManager(cfg *config.Config, store *outbox.Store, backend Backend, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("store required")
	}
	if backend == nil {
		return nil, errors.New("backend required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	origin, ok := outbox.ParseOrigin(cfg.Queue.Origin)
	if !ok {
		origin = outbox.OriginWeb
	}

	m := &Manager{
		store:         store,
		backend:       backend,
		logger:        logging.WithComponent(logger, "replay"),
		origin:        origin,
		drainInterval: time.Duration(cfg.Sync.DrainInterval) * time.Second,
		backoffMax:    time.Duration(cfg.Sync.BackoffMax) * time.Second,
		kick:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// SendResult reports the outcome of a message send: either a reply or a
// queued entry.
type SendResult struct {
	Response *api.ChatResponse
	Queued   bool
	EntryID  string
}

// SendMessage tries the chat pipeline and queues the message on
// connectivity failure, reporting a soft "queued" outcome instead of an
// error.
func (m *Manager) SendMessage(ctx context.Context, text, conversationID string) (*SendResult, error) {
	resp, err := m.backend.Chat(ctx, api.ChatRequest{
		Message:        text,
		ConversationID: conversationID,
		Origin:         string(m.origin),
	})
	if err == nil {
		return &SendResult{Response: resp}, nil
	}
	if !client.IsConnectivity(err) {
		return nil, err
	}

	msg, enqueueErr := m.store.EnqueueMessage(ctx, text, conversationID, m.origin)
	if enqueueErr != nil {
		m.logger.Error("failed to queue message after connectivity failure",
			logging.Error(enqueueErr))
		return nil, err
	}
	m.logger.Info("message queued for replay",
		slog.String(logging.FieldEntryID, msg.ID))
	return &SendResult{Queued: true, EntryID: msg.ID}, nil
}

// UploadResult reports the outcome of a meeting upload: either a backend
// acknowledgement or a queued entry.
type UploadResult struct {
	Response *api.TranscribeResponse
	Queued   bool
	EntryID  string
}

// UploadMeeting tries the upload pipeline and queues the recording on
// connectivity failure.
func (m *Manager) UploadMeeting(ctx context.Context, audioPath string, meta api.UploadMetadata) (*UploadResult, error) {
	resp, err := m.backend.UploadMeeting(ctx, audioPath, meta)
	if err == nil {
		return &UploadResult{Response: resp}, nil
	}
	if !client.IsConnectivity(err) {
		return nil, err
	}

	var start, end *time.Time
	if !meta.EventStart.IsZero() {
		start = &meta.EventStart
	}
	if !meta.EventEnd.IsZero() {
		end = &meta.EventEnd
	}
	up, enqueueErr := m.store.EnqueueUpload(ctx, audioPath, meta.MeetingID, meta.Title, start, end)
	if enqueueErr != nil {
		m.logger.Error("failed to queue upload after connectivity failure",
			logging.Error(enqueueErr))
		return nil, err
	}
	m.logger.Info("upload queued for replay",
		slog.String(logging.FieldEntryID, up.ID))
	return &UploadResult{Queued: true, EntryID: up.ID}, nil
}

// ActionResult reports the outcome of a deferred-capable mutation.
type ActionResult struct {
	Queued  bool
	EntryID string
}

// RunAction applies a note or calendar mutation, queueing it on
// connectivity failure.
func (m *Manager) RunAction(ctx context.Context, kind outbox.ActionKind, payload any) (*ActionResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: action %s: %v", client.ErrEncoding, kind, err)
	}

	if err := m.applyAction(ctx, kind, data); err != nil {
		if !client.IsConnectivity(err) {
			return nil, err
		}
		act, enqueueErr := m.store.EnqueueAction(ctx, kind, data)
		if enqueueErr != nil {
			m.logger.Error("failed to queue action after connectivity failure",
				logging.Error(enqueueErr))
			return nil, err
		}
		m.logger.Info("action queued for replay",
			slog.String(logging.FieldEntryID, act.ID),
			slog.String("kind", string(kind)))
		return &ActionResult{Queued: true, EntryID: act.ID}, nil
	}
	return &ActionResult{}, nil
}

// NotePayload is the queued form of a note mutation.
type NotePayload struct {
	ID string `json:"id,omitempty"`
	api.NoteWrite
}

// EventPayload is the queued form of a calendar mutation.
type EventPayload struct {
	ID string `json:"id,omitempty"`
	api.EventWrite
}

func (m *Manager) applyAction(ctx context.Context, kind outbox.ActionKind, data []byte) error {
	switch kind {
	case outbox.ActionCreateNote, outbox.ActionUpdateNote, outbox.ActionDeleteNote:
		var payload NotePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("%w: decode %s payload: %v", client.ErrInvalidResponse, kind, err)
		}
		switch kind {
		case outbox.ActionCreateNote:
			_, err := m.backend.CreateNote(ctx, payload.NoteWrite)
			return err
		case outbox.ActionUpdateNote:
			_, err := m.backend.UpdateNote(ctx, payload.ID, payload.NoteWrite)
			return err
		default:
			return m.backend.DeleteNote(ctx, payload.ID)
		}
	case outbox.ActionCreateEvent, outbox.ActionUpdateEvent, outbox.ActionDeleteEvent:
		var payload EventPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("%w: decode %s payload: %v", client.ErrInvalidResponse, kind, err)
		}
		switch kind {
		case outbox.ActionCreateEvent:
			_, err := m.backend.CreateEvent(ctx, payload.EventWrite)
			return err
		case outbox.ActionUpdateEvent:
			_, err := m.backend.UpdateEvent(ctx, payload.ID, payload.EventWrite)
			return err
		default:
			return m.backend.DeleteEvent(ctx, payload.ID)
		}
	default:
		return fmt.Errorf("unknown action kind %q", kind)
	}
}

// Drain replays all queued work in insertion order: messages, then actions,
// then uploads. The queue is snapshotted once at the start so items
// enqueued mid-drain wait for the next pass. Safe to call repeatedly; an
// empty queue is a no-op.
func (m *Manager) Drain(ctx context.Context) (DrainResult, error) {
	m.drainMu.Lock()
	defer m.drainMu.Unlock()

	result := DrainResult{When: time.Now().UTC()}

	if !m.backend.Authenticated() {
		m.logger.Debug("skipping drain, no session")
		m.recordResult(result)
		return result, nil
	}

	messages := m.snapshotMessages(ctx)
	actions := m.snapshotActions(ctx)
	uploads := m.snapshotUploads(ctx)

	for _, msg := range messages {
		if ctx.Err() != nil {
			m.recordResult(result)
			return result, ctx.Err()
		}
		m.replayMessage(ctx, msg, &result)
	}
	for _, act := range actions {
		if ctx.Err() != nil {
			m.recordResult(result)
			return result, ctx.Err()
		}
		m.replayAction(ctx, act, &result)
	}
	for _, up := range uploads {
		if ctx.Err() != nil {
			m.recordResult(result)
			return result, ctx.Err()
		}
		m.replayUpload(ctx, up, &result)
	}

	m.recordResult(result)
	if result.Attempted() {
		m.logger.Info("drain finished",
			slog.Int("sent", result.Sent),
			slog.Int("failed", result.Failed),
			slog.Int("skipped", result.Skipped))
		if m.notifier != nil {
			m.notifier.DrainFinished(ctx, result)
		}
	}
	return result, nil
}

func (m *Manager) snapshotMessages(ctx context.Context) []*outbox.Message {
	messages, err := m.store.Messages(ctx)
	if err != nil {
		m.logger.Error("listing queued messages failed", logging.Error(err))
		return nil
	}
	return messages
}

func (m *Manager) snapshotActions(ctx context.Context) []*outbox.Action {
	actions, err := m.store.Actions(ctx)
	if err != nil {
		m.logger.Error("listing queued actions failed", logging.Error(err))
		return nil
	}
	return actions
}

func (m *Manager) snapshotUploads(ctx context.Context) []*outbox.Upload {
	uploads, err := m.store.Uploads(ctx)
	if err != nil {
		m.logger.Error("listing queued uploads failed", logging.Error(err))
		return nil
	}
	return uploads
}

func (m *Manager) replayMessage(ctx context.Context, msg *outbox.Message, result *DrainResult) {
	_, err := m.backend.Chat(ctx, api.ChatRequest{
		Message:        msg.Payload,
		ConversationID: msg.ConversationID,
		Origin:         string(msg.Origin),
	})
	switch {
	case err == nil:
		m.removeEntry(ctx, msg.ID, m.store.RemoveMessage)
		result.Sent++
	case client.IsConnectivity(err):
		// Still offline; the message stays queued for the next drain.
		result.Failed++
	case m.sessionGone(ctx, err):
		result.Failed++
	default:
		m.logger.Warn("backend rejected queued message, dropping",
			slog.String(logging.FieldEntryID, msg.ID),
			logging.Error(err))
		m.removeEntry(ctx, msg.ID, m.store.RemoveMessage)
		result.Failed++
	}
}

func (m *Manager) replayAction(ctx context.Context, act *outbox.Action, result *DrainResult) {
	err := m.applyAction(ctx, act.Kind, act.Payload)
	switch {
	case err == nil:
		m.removeEntry(ctx, act.ID, m.store.RemoveAction)
		result.Sent++
	case client.IsConnectivity(err):
		result.Failed++
	case m.sessionGone(ctx, err):
		result.Failed++
	default:
		m.logger.Warn("backend rejected queued action, dropping",
			slog.String(logging.FieldEntryID, act.ID),
			slog.String("kind", string(act.Kind)),
			logging.Error(err))
		m.removeEntry(ctx, act.ID, m.store.RemoveAction)
		result.Failed++
	}
}

func (m *Manager) replayUpload(ctx context.Context, up *outbox.Upload, result *DrainResult) {
	if up.Status == outbox.UploadFailed && !up.CanRetry(m.store.MaxUploadRetries()) {
		// Retry budget exhausted; only an explicit user retry can revive it.
		result.Skipped++
		return
	}

	if err := m.store.UpdateUploadStatus(ctx, up.ID, outbox.UploadUploading, ""); err != nil {
		m.logger.Error("marking upload in progress failed",
			slog.String(logging.FieldEntryID, up.ID),
			logging.Error(err))
		result.Failed++
		return
	}

	meta := api.UploadMetadata{
		Title:     up.EventTitle,
		MeetingID: up.MeetingID,
	}
	if up.EventStart != nil {
		meta.EventStart = *up.EventStart
	}
	if up.EventEnd != nil {
		meta.EventEnd = *up.EventEnd
	}

	_, err := m.backend.UploadMeeting(ctx, up.FilePath, meta)
	if err == nil {
		m.removeEntry(ctx, up.ID, m.store.RemoveUpload)
		result.Sent++
		return
	}

	if statusErr := m.store.UpdateUploadStatus(ctx, up.ID, outbox.UploadFailed, err.Error()); statusErr != nil {
		m.logger.Error("marking upload failed failed",
			slog.String(logging.FieldEntryID, up.ID),
			logging.Error(statusErr))
	}
	m.sessionGone(ctx, err)
	result.Failed++
}

// RetryUpload resets a failed upload to pending and kicks a drain. Refused
// when the retry budget is exhausted.
func (m *Manager) RetryUpload(ctx context.Context, id string) error {
	if err := m.store.ResetUpload(ctx, id); err != nil {
		return err
	}
	m.TriggerDrain()
	return nil
}

// Authenticated reports whether the backend holds a session.
func (m *Manager) Authenticated() bool {
	return m.backend.Authenticated()
}

// LastResult returns the most recent drain summary, if any.
func (m *Manager) LastResult() *DrainResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastResult == nil {
		return nil
	}
	result := *m.lastResult
	return &result
}

func (m *Manager) recordResult(result DrainResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastResult = &result
}

func (m *Manager) removeEntry(ctx context.Context, id string, remove func(context.Context, string) error) {
	if err := remove(ctx, id); err != nil {
		m.logger.Error("removing replayed entry failed",
			slog.String(logging.FieldEntryID, id),
			logging.Error(err))
	}
}

// sessionGone notifies once when an error indicates the session ended.
func (m *Manager) sessionGone(ctx context.Context, err error) bool {
	if !errors.Is(err, client.ErrSessionExpired) && !errors.Is(err, client.ErrNotAuthenticated) {
		return false
	}
	if m.notifier != nil {
		m.notifier.SessionExpired(ctx)
	}
	return true
}

// Start launches the periodic drain loop. Stop or context cancellation
// shuts it down; an in-flight item replay completes before the loop exits.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.stop = cancel
	m.done = make(chan struct{})
	go m.run(loopCtx)
}

// Stop terminates the drain loop and waits for it to exit.
func (m *Manager) Stop() {
	if m.stop == nil {
		return
	}
	m.stop()
	<-m.done
}

// TriggerDrain requests an immediate drain pass from the loop.
func (m *Manager) TriggerDrain() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// SetDrainInterval adjusts the loop period (config reload).
func (m *Manager) SetDrainInterval(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if interval > 0 {
		m.drainInterval = interval
	}
}

func (m *Manager) interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drainInterval
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)

	wait := newBackoff(m.interval(), m.backoffMax)
	timer := time.NewTimer(m.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.kick:
		case <-timer.C:
		}

		result, err := m.Drain(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Error("drain failed", logging.Error(err))
		}

		next := m.interval()
		if result.Attempted() && result.Sent == 0 {
			// Nothing got through; back off before hammering the backend.
			next = wait.Next()
		} else {
			wait.Reset()
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(next)
	}
}
