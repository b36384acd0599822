package kpi

import (
	"sort"
	"time"

	"github.com/bantest04/Manager-KPI2026/internal/model"
)

// Filter narrows the report set before aggregation. MemberID 0 means all
// members. From and To are inclusive YYYY-MM-DD bounds; empty means
// unbounded. Date comparison is lexicographic, which matches calendar
// order for the canonical format enforced at the handler boundary.
type Filter struct {
	MemberID int64
	From     string
	To       string
}

// Totals are the realized counters over some scope.
type Totals struct {
	Reach     int64 `json:"reach"`
	Responses int64 `json:"responses"`
	Deals     int64 `json:"deals"`
	Revenue   int64 `json:"revenue"`
}

// Rates are the derived ratio metrics. Every division is zero-guarded:
// a zero denominator yields 0, never NaN or Inf.
type Rates struct {
	AverageOrderValue float64 `json:"average_order_value"`
	ReplyRate         float64 `json:"reply_rate"`
	ConversionRate    float64 `json:"conversion_rate"`
}

// DayTotals are one calendar day's totals within the filtered scope.
type DayTotals struct {
	Date string `json:"date"`
	Totals
}

// MemberStat is one member's totals plus progress against their absolute
// allocated target.
type MemberStat struct {
	Totals
	Rates           Rates   `json:"rates"`
	Target          float64 `json:"target"`
	ProgressPercent float64 `json:"progress_percent"`
	Remaining       float64 `json:"remaining"`
}

// Summary is the full aggregation result for one query.
type Summary struct {
	Team     Totals               `json:"team"`
	Rates    Rates                `json:"rates"`
	ByMember map[int64]MemberStat `json:"by_member"`
	ByDay    []DayTotals          `json:"by_day"`

	TeamTarget      float64 `json:"team_target"`
	ProgressPercent float64 `json:"progress_percent"`
	Remaining       float64 `json:"remaining"`

	DistinctReportDays int     `json:"distinct_report_days"`
	AveragePerDay      float64 `json:"average_per_day"`
	DaysInMonth        int     `json:"days_in_month"`
	DaysRemaining      int     `json:"days_remaining"`
	ForecastPercent    float64 `json:"forecast_percent"`
}

// Summarize aggregates the filtered report set into team, per-member and
// per-day totals, derived rates, progress against targets, and a naive
// linear run-rate forecast. It is a pure function of its inputs.
//
// The forecast assumes future daily revenue equals the average over days
// that actually have reports; it over- or under-estimates when reporting
// density is uneven. month selects the calendar month used for day
// counting; when empty, now's month is used.
func Summarize(reports []model.Report, f Filter, targets map[int64]float64, teamTarget float64, month string, now time.Time) Summary {
	s := Summary{
		ByMember:   make(map[int64]MemberStat),
		TeamTarget: teamTarget,
	}

	byMember := make(map[int64]Totals)
	byDay := make(map[string]Totals)

	for _, r := range reports {
		if !matches(r, f) {
			continue
		}
		s.Team = s.Team.add(r)
		byMember[r.MemberID] = byMember[r.MemberID].add(r)
		byDay[r.ReportDate] = byDay[r.ReportDate].add(r)
	}

	s.Rates = deriveRates(s.Team)

	for id, totals := range byMember {
		target := targets[id]
		s.ByMember[id] = MemberStat{
			Totals:          totals,
			Rates:           deriveRates(totals),
			Target:          target,
			ProgressPercent: progressPercent(totals.Revenue, target),
			Remaining:       remaining(totals.Revenue, target),
		}
	}
	// Members with a target but no reports still get a progress row.
	for id, target := range targets {
		if _, ok := s.ByMember[id]; !ok && target > 0 {
			s.ByMember[id] = MemberStat{Target: target, Remaining: target}
		}
	}

	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		s.ByDay = append(s.ByDay, DayTotals{Date: d, Totals: byDay[d]})
	}

	s.ProgressPercent = progressPercent(s.Team.Revenue, teamTarget)
	s.Remaining = remaining(s.Team.Revenue, teamTarget)

	s.DistinctReportDays = len(byDay)
	if s.DistinctReportDays > 0 {
		s.AveragePerDay = float64(s.Team.Revenue) / float64(s.DistinctReportDays)
	}
	s.DaysInMonth = daysInMonth(month, now)
	s.DaysRemaining = s.DaysInMonth - s.DistinctReportDays
	if s.DaysRemaining < 0 {
		s.DaysRemaining = 0
	}

	if s.AveragePerDay > 0 && teamTarget > 0 {
		projected := float64(s.Team.Revenue) + s.AveragePerDay*float64(s.DaysRemaining)
		s.ForecastPercent = 100 * projected / teamTarget
	} else {
		// No run-rate signal; the forecast degrades to current progress.
		s.ForecastPercent = s.ProgressPercent
	}

	return s
}

func matches(r model.Report, f Filter) bool {
	if f.MemberID != 0 && r.MemberID != f.MemberID {
		return false
	}
	if f.From != "" && r.ReportDate < f.From {
		return false
	}
	if f.To != "" && r.ReportDate > f.To {
		return false
	}
	return true
}

func (t Totals) add(r model.Report) Totals {
	t.Reach += r.Reach
	t.Responses += r.Responses
	t.Deals += r.Deals
	t.Revenue += r.Revenue
	return t
}

func deriveRates(t Totals) Rates {
	var r Rates
	if t.Deals > 0 {
		r.AverageOrderValue = float64(t.Revenue) / float64(t.Deals)
	}
	if t.Reach > 0 {
		r.ReplyRate = float64(t.Responses) / float64(t.Reach)
	}
	if t.Responses > 0 {
		r.ConversionRate = float64(t.Deals) / float64(t.Responses)
	}
	return r
}

// progressPercent is deliberately uncapped: values over 100 signal
// over-achievement. Display capping belongs to the client.
func progressPercent(revenue int64, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return 100 * float64(revenue) / target
}

func remaining(revenue int64, target float64) float64 {
	left := target - float64(revenue)
	if left < 0 {
		return 0
	}
	return left
}

// daysInMonth returns the calendar length of the YYYY-MM month key,
// falling back to now's month when the key is empty or malformed.
func daysInMonth(month string, now time.Time) int {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		t = now
	}
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
