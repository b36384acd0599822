package kpi

import (
	"math"
	"testing"
	"time"
)

func TestWorkingDaysExcludesSundays(t *testing.T) {
	// Mon Nov 3 through Sun Nov 9, 2025: six working days.
	start := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC)

	if got := WorkingDays(start, end); got != 6 {
		t.Errorf("WorkingDays = %d, want 6", got)
	}
}

func TestWorkingDaysSingleSunday(t *testing.T) {
	sunday := time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC)
	if got := WorkingDays(sunday, sunday); got != 0 {
		t.Errorf("WorkingDays = %d, want 0", got)
	}
}

func TestDerivePaceTargets(t *testing.T) {
	// Nov 1 through Dec 1, 2025 contains 5 Sundays: 26 working days.
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	p := DerivePace(start, end, 4_000_000_000, 4, Rates{})

	if p.WorkingDays != 26 {
		t.Fatalf("WorkingDays = %d, want 26", p.WorkingDays)
	}
	if p.PerMemberTarget != 1_000_000_000 {
		t.Errorf("PerMemberTarget = %v, want 1e9", p.PerMemberTarget)
	}
	if math.Abs(p.DailyPerMember-38_461_538.46) > 1 {
		t.Errorf("DailyPerMember = %v, want ~38461538", p.DailyPerMember)
	}
	if math.Abs(p.WeeklyPerMember-230_769_230.77) > 1 {
		t.Errorf("WeeklyPerMember = %v, want ~230769231", p.WeeklyPerMember)
	}
}

func TestDerivePaceFunnelChain(t *testing.T) {
	start := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC) // Mon-Sat, 6 working days

	rates := Rates{AverageOrderValue: 1000, ReplyRate: 0.2, ConversionRate: 0.1}
	p := DerivePace(start, end, 60_000, 2, rates)

	// 30k per member / 6 days = 5k/day; 5 deals/day; 50 responses; 250 reach.
	if p.DailyPerMember != 5000 {
		t.Fatalf("DailyPerMember = %v, want 5000", p.DailyPerMember)
	}
	if p.DealsPerDay != 5 {
		t.Errorf("DealsPerDay = %v, want 5", p.DealsPerDay)
	}
	if p.RequiredResponses != 50 {
		t.Errorf("RequiredResponses = %v, want 50", p.RequiredResponses)
	}
	if p.RequiredReach != 250 {
		t.Errorf("RequiredReach = %v, want 250", p.RequiredReach)
	}
}

func TestDerivePaceZeroRatesGuarded(t *testing.T) {
	start := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)

	p := DerivePace(start, end, 60_000, 2, Rates{})

	if p.DealsPerDay != 0 || p.RequiredResponses != 0 || p.RequiredReach != 0 {
		t.Errorf("funnel chain = %v/%v/%v, want all 0 with unobserved rates",
			p.DealsPerDay, p.RequiredResponses, p.RequiredReach)
	}
}

func TestDerivePaceWorkingDaysFloor(t *testing.T) {
	// Degenerate window (all Sundays) still divides by at least one day.
	sunday := time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC)
	p := DerivePace(sunday, sunday, 1000, 1, Rates{})

	if p.WorkingDays != 1 {
		t.Errorf("WorkingDays = %d, want floor of 1", p.WorkingDays)
	}
	if p.DailyPerMember != 1000 {
		t.Errorf("DailyPerMember = %v, want 1000", p.DailyPerMember)
	}
}

func TestDerivePaceNoMembers(t *testing.T) {
	start := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)

	p := DerivePace(start, end, 60_000, 0, Rates{})
	if p.PerMemberTarget != 0 {
		t.Errorf("PerMemberTarget = %v, want 0 with no members", p.PerMemberTarget)
	}
}
