package client

import (
	"context"

	"kai/internal/api"
)

// UsageSummary fetches aggregate account usage.
func (c *Client) UsageSummary(ctx context.Context) (*api.UsageSummary, error) {
	var summary api.UsageSummary
	if err := c.getJSON(ctx, "/usage/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// UsageDaily fetches per-day usage rows.
func (c *Client) UsageDaily(ctx context.Context) ([]api.DailyUsage, error) {
	var rows []api.DailyUsage
	if err := c.getJSON(ctx, "/usage/daily", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UsageModels fetches per-model usage rows.
func (c *Client) UsageModels(ctx context.Context) ([]api.ModelUsage, error) {
	var rows []api.ModelUsage
	if err := c.getJSON(ctx, "/usage/models", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
