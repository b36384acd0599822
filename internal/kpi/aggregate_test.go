package kpi

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/bantest04/Manager-KPI2026/internal/model"
)

var testNow = time.Date(2025, 11, 15, 12, 0, 0, 0, time.UTC)

func TestSummarizeTotalsAndAOV(t *testing.T) {
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-03", Deals: 2, Revenue: 100},
		{MemberID: 1, ReportDate: "2025-11-04", Deals: 0, Revenue: 0},
	}

	s := Summarize(reports, Filter{}, nil, 0, "2025-11", testNow)

	if s.Team.Deals != 2 {
		t.Errorf("Team.Deals = %d, want 2", s.Team.Deals)
	}
	if s.Team.Revenue != 100 {
		t.Errorf("Team.Revenue = %d, want 100", s.Team.Revenue)
	}
	if s.Rates.AverageOrderValue != 50 {
		t.Errorf("AverageOrderValue = %v, want 50", s.Rates.AverageOrderValue)
	}
}

func TestZeroDenominatorsYieldZeroRates(t *testing.T) {
	s := Summarize(nil, Filter{}, nil, 0, "2025-11", testNow)

	if s.Rates.AverageOrderValue != 0 {
		t.Errorf("AverageOrderValue = %v, want 0", s.Rates.AverageOrderValue)
	}
	if s.Rates.ReplyRate != 0 {
		t.Errorf("ReplyRate = %v, want 0", s.Rates.ReplyRate)
	}
	if s.Rates.ConversionRate != 0 {
		t.Errorf("ConversionRate = %v, want 0", s.Rates.ConversionRate)
	}
}

func TestFunnelRates(t *testing.T) {
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-03", Reach: 20, Responses: 5, Deals: 2, Revenue: 60},
		{MemberID: 2, ReportDate: "2025-11-03", Reach: 30, Responses: 5, Deals: 3, Revenue: 90},
	}

	s := Summarize(reports, Filter{}, nil, 0, "2025-11", testNow)

	if s.Rates.ReplyRate != 0.2 {
		t.Errorf("ReplyRate = %v, want 0.2", s.Rates.ReplyRate)
	}
	if s.Rates.ConversionRate != 0.5 {
		t.Errorf("ConversionRate = %v, want 0.5", s.Rates.ConversionRate)
	}
}

func TestOverAchievementUncapped(t *testing.T) {
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-03", Revenue: 1500},
	}

	s := Summarize(reports, Filter{}, nil, 1000, "2025-11", testNow)

	if s.ProgressPercent <= 100 {
		t.Errorf("ProgressPercent = %v, want > 100", s.ProgressPercent)
	}
	if s.Remaining != 0 {
		t.Errorf("Remaining = %v, want 0 (never negative)", s.Remaining)
	}
}

func TestZeroTargetProgress(t *testing.T) {
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-03", Revenue: 500},
	}

	s := Summarize(reports, Filter{}, nil, 0, "2025-11", testNow)

	if s.ProgressPercent != 0 {
		t.Errorf("ProgressPercent = %v, want 0 with no target", s.ProgressPercent)
	}
}

func TestFilterMemberAndDateRange(t *testing.T) {
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-01", Revenue: 10},
		{MemberID: 1, ReportDate: "2025-11-05", Revenue: 20},
		{MemberID: 1, ReportDate: "2025-11-10", Revenue: 40},
		{MemberID: 2, ReportDate: "2025-11-05", Revenue: 80},
	}

	s := Summarize(reports, Filter{MemberID: 1, From: "2025-11-05", To: "2025-11-10"}, nil, 0, "2025-11", testNow)

	// Bounds are inclusive: Nov 5 and Nov 10 for member 1 only.
	if s.Team.Revenue != 60 {
		t.Errorf("Team.Revenue = %d, want 60", s.Team.Revenue)
	}
	if _, ok := s.ByMember[2]; ok {
		t.Error("ByMember contains member 2, want filtered out")
	}
}

func TestFilterOpenEndedBounds(t *testing.T) {
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-01", Revenue: 10},
		{MemberID: 1, ReportDate: "2025-11-20", Revenue: 20},
	}

	s := Summarize(reports, Filter{From: "2025-11-10"}, nil, 0, "2025-11", testNow)
	if s.Team.Revenue != 20 {
		t.Errorf("Team.Revenue = %d, want 20 with open To bound", s.Team.Revenue)
	}

	s = Summarize(reports, Filter{To: "2025-11-10"}, nil, 0, "2025-11", testNow)
	if s.Team.Revenue != 10 {
		t.Errorf("Team.Revenue = %d, want 10 with open From bound", s.Team.Revenue)
	}
}

func TestForecastLinearRunRate(t *testing.T) {
	// 10 distinct report days in a 30-day month, 100k revenue per day.
	var reports []model.Report
	for day := 1; day <= 10; day++ {
		reports = append(reports, model.Report{
			MemberID:   1,
			ReportDate: time.Date(2025, 11, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Revenue:    100_000,
		})
	}

	s := Summarize(reports, Filter{}, nil, 3_000_000, "2025-11", testNow)

	if s.DistinctReportDays != 10 {
		t.Fatalf("DistinctReportDays = %d, want 10", s.DistinctReportDays)
	}
	if s.DaysInMonth != 30 {
		t.Fatalf("DaysInMonth = %d, want 30", s.DaysInMonth)
	}
	if s.DaysRemaining != 20 {
		t.Fatalf("DaysRemaining = %d, want 20", s.DaysRemaining)
	}
	if s.AveragePerDay != 100_000 {
		t.Errorf("AveragePerDay = %v, want 100000", s.AveragePerDay)
	}
	// 100 * (1M + 100k*20) / 3M = 100%
	if math.Abs(s.ForecastPercent-100) > 1e-9 {
		t.Errorf("ForecastPercent = %v, want 100", s.ForecastPercent)
	}
}

func TestForecastFallsBackToProgress(t *testing.T) {
	s := Summarize(nil, Filter{}, nil, 1_000_000, "2025-11", testNow)

	if s.ForecastPercent != s.ProgressPercent {
		t.Errorf("ForecastPercent = %v, want ProgressPercent %v with no run-rate signal",
			s.ForecastPercent, s.ProgressPercent)
	}
}

func TestPerMemberProgress(t *testing.T) {
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-03", Revenue: 300},
		{MemberID: 2, ReportDate: "2025-11-03", Revenue: 50},
	}
	targets := map[int64]float64{1: 600, 2: 100, 3: 300}

	s := Summarize(reports, Filter{}, targets, 1000, "2025-11", testNow)

	if got := s.ByMember[1].ProgressPercent; got != 50 {
		t.Errorf("member 1 progress = %v, want 50", got)
	}
	if got := s.ByMember[2].Remaining; got != 50 {
		t.Errorf("member 2 remaining = %v, want 50", got)
	}
	// Member 3 reported nothing but has a target: progress row still present.
	m3, ok := s.ByMember[3]
	if !ok {
		t.Fatal("member 3 missing from ByMember despite having a target")
	}
	if m3.Remaining != 300 {
		t.Errorf("member 3 remaining = %v, want 300", m3.Remaining)
	}
}

func TestByDayOrdered(t *testing.T) {
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-20", Revenue: 3},
		{MemberID: 1, ReportDate: "2025-11-02", Revenue: 1},
		{MemberID: 1, ReportDate: "2025-11-10", Revenue: 2},
	}

	s := Summarize(reports, Filter{}, nil, 0, "2025-11", testNow)

	want := []string{"2025-11-02", "2025-11-10", "2025-11-20"}
	if len(s.ByDay) != len(want) {
		t.Fatalf("len(ByDay) = %d, want %d", len(s.ByDay), len(want))
	}
	for i, day := range s.ByDay {
		if day.Date != want[i] {
			t.Errorf("ByDay[%d].Date = %q, want %q", i, day.Date, want[i])
		}
	}
}

func TestToleratesCounterViolations(t *testing.T) {
	// responses > reach and deals > responses are not enforced; the
	// aggregator must not blow up, even if the rates come out above 1.
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-03", Reach: 2, Responses: 10, Deals: 20, Revenue: 100},
	}

	s := Summarize(reports, Filter{}, nil, 0, "2025-11", testNow)

	if s.Rates.ReplyRate != 5 {
		t.Errorf("ReplyRate = %v, want 5", s.Rates.ReplyRate)
	}
	if s.Rates.ConversionRate != 2 {
		t.Errorf("ConversionRate = %v, want 2", s.Rates.ConversionRate)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	reports := []model.Report{
		{MemberID: 1, ReportDate: "2025-11-03", Reach: 10, Responses: 4, Deals: 2, Revenue: 500},
		{MemberID: 2, ReportDate: "2025-11-04", Reach: 8, Responses: 3, Deals: 1, Revenue: 200},
	}
	targets := map[int64]float64{1: 1000, 2: 1000}

	first := Summarize(reports, Filter{}, targets, 2000, "2025-11", testNow)
	second := Summarize(reports, Filter{}, targets, 2000, "2025-11", testNow)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different summaries")
	}
}

func TestDaysInMonthFallsBackToNow(t *testing.T) {
	s := Summarize(nil, Filter{}, nil, 0, "", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	if s.DaysInMonth != 28 {
		t.Errorf("DaysInMonth = %d, want 28 for Feb 2026", s.DaysInMonth)
	}
}
