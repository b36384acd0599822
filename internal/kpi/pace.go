package kpi

import "time"

// Pace is informational daily-pace guidance for a campaign window,
// derived from the team target and currently observed rates. It is a
// back-of-the-envelope chain, not a prediction.
type Pace struct {
	WorkingDays       int     `json:"working_days"`
	PerMemberTarget   float64 `json:"per_member_target"`
	DailyPerMember    float64 `json:"daily_per_member"`
	WeeklyPerMember   float64 `json:"weekly_per_member"`
	DealsPerDay       float64 `json:"deals_per_day"`
	RequiredResponses float64 `json:"required_responses"`
	RequiredReach     float64 `json:"required_reach"`
}

// WorkingDays counts the days in [start, end] that are not Sundays.
// The team works a Monday–Saturday week.
func WorkingDays(start, end time.Time) int {
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Sunday {
			count++
		}
	}
	return count
}

// DerivePace computes the required daily pace per member for a campaign
// window. The reach/response chain inverts the observed funnel rates, so
// each step is zero-guarded: an unobserved rate yields 0 rather than a
// nonsense requirement.
func DerivePace(start, end time.Time, teamTarget float64, memberCount int, rates Rates) Pace {
	p := Pace{WorkingDays: WorkingDays(start, end)}
	if p.WorkingDays < 1 {
		p.WorkingDays = 1
	}
	if memberCount < 1 {
		return p
	}

	p.PerMemberTarget = teamTarget / float64(memberCount)
	p.DailyPerMember = p.PerMemberTarget / float64(p.WorkingDays)
	p.WeeklyPerMember = p.DailyPerMember * 6

	if rates.AverageOrderValue > 0 {
		p.DealsPerDay = p.DailyPerMember / rates.AverageOrderValue
	}
	if rates.ConversionRate > 0 {
		p.RequiredResponses = p.DealsPerDay / rates.ConversionRate
	}
	if rates.ReplyRate > 0 {
		p.RequiredReach = p.RequiredResponses / rates.ReplyRate
	}
	return p
}
