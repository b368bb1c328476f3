package client

import (
	"context"
	"net/http"
	"net/url"

	"kai/internal/api"
)

// Notes lists all stored notes.
func (c *Client) Notes(ctx context.Context) ([]api.Note, error) {
	var notes []api.Note
	if err := c.getJSON(ctx, "/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Note fetches a single note.
func (c *Client) Note(ctx context.Context, id string) (*api.Note, error) {
	var note api.Note
	if err := c.getJSON(ctx, "/notes/"+url.PathEscape(id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// CreateNote adds a note.
func (c *Client) CreateNote(ctx context.Context, write api.NoteWrite) (*api.Note, error) {
	var note api.Note
	if err := c.writeJSON(ctx, http.MethodPost, "/notes", write, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote replaces a note.
func (c *Client) UpdateNote(ctx context.Context, id string, write api.NoteWrite) (*api.Note, error) {
	var note api.Note
	if err := c.writeJSON(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), write, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.writeJSON(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, nil)
}

// SearchNotes performs a full-text search across notes.
func (c *Client) SearchNotes(ctx context.Context, queryText string) ([]api.NoteSearchResult, error) {
	query := url.Values{"q": {queryText}}
	var results []api.NoteSearchResult
	if err := c.getJSON(ctx, "/notes/search", query, &results); err != nil {
		return nil, err
	}
	return results, nil
}
