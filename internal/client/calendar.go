package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"kai/internal/api"
)

// Events lists calendar entries within the optional time window.
func (c *Client) Events(ctx context.Context, opts api.EventListOptions) ([]api.Event, error) {
	query := url.Values{}
	if !opts.From.IsZero() {
		query.Set("from", opts.From.UTC().Format(time.RFC3339))
	}
	if !opts.To.IsZero() {
		query.Set("to", opts.To.UTC().Format(time.RFC3339))
	}

	var events []api.Event
	if err := c.getJSON(ctx, "/calendar/events", query, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent adds a calendar entry.
func (c *Client) CreateEvent(ctx context.Context, write api.EventWrite) (*api.Event, error) {
	var event api.Event
	if err := c.writeJSON(ctx, http.MethodPost, "/calendar/events", write, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent replaces a calendar entry.
func (c *Client) UpdateEvent(ctx context.Context, id string, write api.EventWrite) (*api.Event, error) {
	var event api.Event
	if err := c.writeJSON(ctx, http.MethodPut, "/calendar/events/"+url.PathEscape(id), write, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes a calendar entry.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.writeJSON(ctx, http.MethodDelete, "/calendar/events/"+url.PathEscape(id), nil, nil)
}
