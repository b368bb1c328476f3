package outbox

import (
	"strings"
	"time"
)

// Origin identifies the client surface that produced a queued message.
type Origin string

const (
	OriginMobile Origin = "mobile"
	OriginVoice  Origin = "voice"
	OriginWeb    Origin = "web"
	OriginWatch  Origin = "watch"
)

var originSet = map[Origin]struct{}{
	OriginMobile: {},
	OriginVoice:  {},
	OriginWeb:    {},
	OriginWatch:  {},
}

// ParseOrigin converts a string into a known Origin.
func ParseOrigin(value string) (Origin, bool) {
	normalized := Origin(strings.ToLower(strings.TrimSpace(value)))
	_, ok := originSet[normalized]
	return normalized, ok
}

// UploadStatus represents the lifecycle of a queued meeting upload.
type UploadStatus string

const (
	UploadPending    UploadStatus = "pending"
	UploadUploading  UploadStatus = "uploading"
	UploadProcessing UploadStatus = "processing"
	UploadCompleted  UploadStatus = "completed"
	UploadFailed     UploadStatus = "failed"
)

// ActionKind tags a deferred mutation so drain can decode its payload.
type ActionKind string

const (
	ActionCreateNote  ActionKind = "create_note"
	ActionUpdateNote  ActionKind = "update_note"
	ActionDeleteNote  ActionKind = "delete_note"
	ActionCreateEvent ActionKind = "create_event"
	ActionUpdateEvent ActionKind = "update_event"
	ActionDeleteEvent ActionKind = "delete_event"
)

var actionKindSet = map[ActionKind]struct{}{
	ActionCreateNote:  {},
	ActionUpdateNote:  {},
	ActionDeleteNote:  {},
	ActionCreateEvent: {},
	ActionUpdateEvent: {},
	ActionDeleteEvent: {},
}

// ParseActionKind converts a string into a known ActionKind.
func ParseActionKind(value string) (ActionKind, bool) {
	normalized := ActionKind(strings.ToLower(strings.TrimSpace(value)))
	_, ok := actionKindSet[normalized]
	return normalized, ok
}

// Message is a chat message held for later replay.
type Message struct {
	ID             string
	Payload        string
	ConversationID string
	Origin         Origin
	CreatedAt      time.Time
}

// Upload is a meeting audio file held for later replay.
type Upload struct {
	ID         string
	FilePath   string
	MeetingID  string
	EventTitle string
	EventStart *time.Time
	EventEnd   *time.Time
	Status     UploadStatus
	RetryCount int
	LastError  string
	CreatedAt  time.Time
}

// CanRetry reports whether a failed upload is still inside its retry budget.
func (u Upload) CanRetry(maxRetries int) bool {
	return u.Status == UploadFailed && u.RetryCount < maxRetries
}

// Action is a deferred mutation with an opaque payload decoded by the
// drain layer, not by the store.
type Action struct {
	ID        string
	Kind      ActionKind
	Payload   []byte
	CreatedAt time.Time
}

// Counts aggregates pending work per sub-queue.
type Counts struct {
	Messages int
	Uploads  int
	Actions  int
}

// Total sums all sub-queues.
func (c Counts) Total() int {
	return c.Messages + c.Uploads + c.Actions
}
