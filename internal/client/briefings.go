package client

import (
	"context"

	"kai/internal/api"
)

// DailyBriefing fetches the generated daily digest.
func (c *Client) DailyBriefing(ctx context.Context) (*api.Briefing, error) {
	var briefing api.Briefing
	if err := c.getJSON(ctx, "/briefings/daily", nil, &briefing); err != nil {
		return nil, err
	}
	return &briefing, nil
}

// WeeklyBriefing fetches the generated weekly digest.
func (c *Client) WeeklyBriefing(ctx context.Context) (*api.Briefing, error) {
	var briefing api.Briefing
	if err := c.getJSON(ctx, "/briefings/weekly", nil, &briefing); err != nil {
		return nil, err
	}
	return &briefing, nil
}
