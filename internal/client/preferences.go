package client

import (
	"context"
	"net/http"

	"kai/internal/api"
)

// Preferences fetches the account preference document.
func (c *Client) Preferences(ctx context.Context) (api.Preferences, error) {
	var prefs api.Preferences
	if err := c.getJSON(ctx, "/preferences", nil, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// UpdatePreferences replaces the account preference document.
func (c *Client) UpdatePreferences(ctx context.Context, prefs api.Preferences) (api.Preferences, error) {
	var updated api.Preferences
	if err := c.writeJSON(ctx, http.MethodPut, "/preferences", prefs, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RoutingConfig fetches the model routing configuration.
func (c *Client) RoutingConfig(ctx context.Context) (*api.RoutingConfig, error) {
	var routing api.RoutingConfig
	if err := c.getJSON(ctx, "/routing/config", nil, &routing); err != nil {
		return nil, err
	}
	return &routing, nil
}

// UpdateRoutingConfig replaces the model routing configuration.
func (c *Client) UpdateRoutingConfig(ctx context.Context, routing api.RoutingConfig) (*api.RoutingConfig, error) {
	var updated api.RoutingConfig
	if err := c.writeJSON(ctx, http.MethodPut, "/routing/config", routing, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
