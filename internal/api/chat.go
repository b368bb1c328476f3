package api

import "time"

// ChatRequest is the body for POST /chat.
type ChatRequest struct {
	Message        string           `json:"message"`
	ConversationID string           `json:"conversation_id,omitempty"`
	Origin         string           `json:"origin,omitempty"`
	Metadata       map[string]Value `json:"metadata,omitempty"`
}

// ChatResponse is the assistant reply to a chat message.
type ChatResponse struct {
	ConversationID string           `json:"conversation_id"`
	Reply          string           `json:"reply"`
	Model          string           `json:"model,omitempty"`
	Metadata       map[string]Value `json:"metadata,omitempty"`
	CreatedAt      time.Time        `json:"created_at,omitzero"`
}

// Conversation summarizes a chat thread (GET /conversations).
type Conversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

// ConversationDetail is the full thread (GET /conversations/{id}).
type ConversationDetail struct {
	Conversation
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage is a single turn inside a conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Origin    string    `json:"origin,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
