package api

import "time"

// Note is a stored note (GET /notes).
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	Pinned    bool      `json:"pinned,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// NoteWrite is the body for POST and PUT /notes.
type NoteWrite struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Pinned  bool     `json:"pinned,omitempty"`
}

// NoteSearchResult is one hit from GET /notes/search.
type NoteSearchResult struct {
	Note
	Score   float64 `json:"score,omitempty"`
	Snippet string  `json:"snippet,omitempty"`
}
