package model

import "time"

// TeamTarget is the team-wide revenue target for one calendar month,
// keyed by YYYY-MM.
type TeamTarget struct {
	ID        int64     `json:"id"`
	Month     string    `json:"month"`
	Target    int64     `json:"target"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllocationShare assigns a member a percentage of a month's team target.
type AllocationShare struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	Month     string    `json:"month"`
	Percent   float64   `json:"percent"`
	CreatedAt time.Time `json:"created_at"`
}

// CampaignTarget is a planned campaign window for a month: its date range,
// hand-counted working days, and revenue goal. Seeded at migration time;
// leaders may rewrite a month's window.
type CampaignTarget struct {
	ID          string `json:"id"`
	Month       string `json:"month"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	WorkingDays int    `json:"working_days"`
	Target      int64  `json:"target"`
}
