package api

import "time"

// UsageSummary aggregates account usage (GET /usage/summary).
type UsageSummary struct {
	PeriodStart   time.Time `json:"period_start,omitzero"`
	PeriodEnd     time.Time `json:"period_end,omitzero"`
	TotalRequests int64     `json:"total_requests"`
	TotalTokens   int64     `json:"total_tokens"`
	TotalCostUSD  float64   `json:"total_cost_usd"`
}

// DailyUsage is one row of GET /usage/daily.
type DailyUsage struct {
	Date     string  `json:"date"`
	Requests int64   `json:"requests"`
	Tokens   int64   `json:"tokens"`
	CostUSD  float64 `json:"cost_usd"`
}

// ModelUsage is one row of GET /usage/models.
type ModelUsage struct {
	Model    string  `json:"model"`
	Requests int64   `json:"requests"`
	Tokens   int64   `json:"tokens"`
	CostUSD  float64 `json:"cost_usd"`
}
