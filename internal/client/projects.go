package client

import (
	"context"
	"net/http"
	"net/url"

	"kai/internal/api"
)

// Projects lists tracked projects.
func (c *Client) Projects(ctx context.Context) ([]api.Project, error) {
	var projects []api.Project
	if err := c.getJSON(ctx, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Project fetches a single project.
func (c *Client) Project(ctx context.Context, id string) (*api.Project, error) {
	var project api.Project
	if err := c.getJSON(ctx, "/projects/"+url.PathEscape(id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject adds a project in draft status.
func (c *Client) CreateProject(ctx context.Context, write api.ProjectWrite) (*api.Project, error) {
	var project api.Project
	if err := c.writeJSON(ctx, http.MethodPost, "/projects", write, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject replaces a project's editable fields.
func (c *Client) UpdateProject(ctx context.Context, id string, write api.ProjectWrite) (*api.Project, error) {
	var project api.Project
	if err := c.writeJSON(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), write, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.writeJSON(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil)
}

// ActivateProject transitions a project to active.
func (c *Client) ActivateProject(ctx context.Context, id string) (*api.Project, error) {
	return c.transitionProject(ctx, id, "activate")
}

// CompleteProject transitions a project to complete.
func (c *Client) CompleteProject(ctx context.Context, id string) (*api.Project, error) {
	return c.transitionProject(ctx, id, "complete")
}

// ArchiveProject transitions a project to archived.
func (c *Client) ArchiveProject(ctx context.Context, id string) (*api.Project, error) {
	return c.transitionProject(ctx, id, "archive")
}

func (c *Client) transitionProject(ctx context.Context, id, transition string) (*api.Project, error) {
	var project api.Project
	path := "/projects/" + url.PathEscape(id) + "/" + transition
	if err := c.writeJSON(ctx, http.MethodPost, path, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
