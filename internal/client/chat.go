package client

import (
	"context"
	"net/http"
	"net/url"

	"kai/internal/api"
)

// Chat sends a message to the assistant and returns the reply.
func (c *Client) Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	var resp api.ChatResponse
	if err := c.writeJSON(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Conversations lists chat threads, most recently updated first.
func (c *Client) Conversations(ctx context.Context) ([]api.Conversation, error) {
	var conversations []api.Conversation
	if err := c.getJSON(ctx, "/conversations", nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// Conversation fetches a full thread including its messages.
func (c *Client) Conversation(ctx context.Context, id string) (*api.ConversationDetail, error) {
	var detail api.ConversationDetail
	if err := c.getJSON(ctx, "/conversations/"+url.PathEscape(id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}
