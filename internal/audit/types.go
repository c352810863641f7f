// Package audit persists dashboard snapshots and import runs so metric
// drift between refreshes can be explained after the fact.
package audit

import "time"

// MetricsSnapshot is one persisted dashboard refresh.
type MetricsSnapshot struct {
	TakenAt             time.Time `json:"taken_at"`
	TotalSkus           int       `json:"total_skus"`
	LaunchNow           int       `json:"launch_now"`
	PhaseLater          int       `json:"phase_later"`
	DoNotLaunch         int       `json:"do_not_launch"`
	Unknown             int       `json:"unknown"`
	TotalMonthlyRevenue float64   `json:"total_monthly_revenue"`
	TotalGmDollars      float64   `json:"total_gm_dollars"`
	AvgGmPct            float64   `json:"avg_gm_pct"`

	// MarketChannel holds the pivot rows as stored JSON
	MarketChannel interface{} `json:"market_channel,omitempty"`
}

// ImportRecord is one spreadsheet import attempt, success or failure.
type ImportRecord struct {
	SessionID  string    `json:"session_id"`
	Filename   string    `json:"filename"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Skus       int       `json:"skus"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
}

// Import record statuses.
const (
	ImportStatusSucceeded = "succeeded"
	ImportStatusFailed    = "failed"
)
