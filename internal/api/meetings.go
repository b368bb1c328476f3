package api

import "time"

// Meeting describes a recorded or uploaded meeting (GET /meetings).
type Meeting struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Status     string    `json:"status,omitempty"`
	EventID    string    `json:"event_id,omitempty"`
	Start      time.Time `json:"start,omitzero"`
	End        time.Time `json:"end,omitzero"`
	DurationS  int       `json:"duration_seconds,omitempty"`
	HasSummary bool      `json:"has_summary,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// MeetingSummary is the generated summary (GET /meetings/{id}/summary).
type MeetingSummary struct {
	MeetingID   string    `json:"meeting_id"`
	Summary     string    `json:"summary"`
	ActionItems []string  `json:"action_items,omitempty"`
	Decisions   []string  `json:"decisions,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitzero"`
}

// TranscribeResponse acknowledges an audio upload. Processing continues
// server-side; Status reflects the backend's ingest state.
type TranscribeResponse struct {
	MeetingID string `json:"meeting_id"`
	Status    string `json:"status"`
}

// UploadMetadata carries optional calendar context alongside a meeting
// audio upload (POST /meetings/upload multipart fields).
type UploadMetadata struct {
	Title      string
	EventStart time.Time
	EventEnd   time.Time
	MeetingID  string
}
