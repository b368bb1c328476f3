package api

import "time"

// Briefing is a generated daily or weekly digest.
type Briefing struct {
	Period      string    `json:"period"`
	Headline    string    `json:"headline,omitempty"`
	Body        string    `json:"body"`
	Events      []Event   `json:"events,omitempty"`
	Highlights  []string  `json:"highlights,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitzero"`
}
