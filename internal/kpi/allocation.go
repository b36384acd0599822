package kpi

import "math"

// ShareTolerance is how far the sum of a month's percentage shares may
// drift from 100 before the allocation is flagged invalid.
const ShareTolerance = 0.01

// Allocation is the result of resolving percentage shares against an
// absolute team target. Amounts are always populated, even when the
// shares do not sum to 100, so callers can show a preview; Valid tells
// them whether the underlying shares are saveable.
type Allocation struct {
	Amounts      map[int64]float64 `json:"amounts"`
	TotalPercent float64           `json:"total_percent"`
	Valid        bool              `json:"valid"`
}

// ResolveAllocation turns per-member percentage shares of teamTarget into
// absolute amounts. A member without a share gets 0. The resolver never
// invents an equal split; callers apply EqualShares first when a month has
// no shares at all.
func ResolveAllocation(teamTarget float64, shares map[int64]float64, memberIDs []int64) Allocation {
	total := 0.0
	for _, pct := range shares {
		total += pct
	}

	amounts := make(map[int64]float64, len(memberIDs))
	for _, id := range memberIDs {
		amounts[id] = shares[id] / 100 * teamTarget
	}

	return Allocation{
		Amounts:      amounts,
		TotalPercent: total,
		Valid:        math.Abs(total-100) <= ShareTolerance,
	}
}

// EqualShares returns the equal-division default: 100/n percent per
// member. Used when no allocation has been saved for a month yet.
func EqualShares(memberIDs []int64) map[int64]float64 {
	shares := make(map[int64]float64, len(memberIDs))
	if len(memberIDs) == 0 {
		return shares
	}
	pct := 100.0 / float64(len(memberIDs))
	for _, id := range memberIDs {
		shares[id] = pct
	}
	return shares
}
