package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bantest04/Manager-KPI2026/internal/kpi"
	"github.com/bantest04/Manager-KPI2026/internal/store"
)

type SummaryHandler struct {
	reports *store.ReportStore
	targets *store.TargetStore
	members *store.MemberStore
	logger  *slog.Logger
}

func NewSummaryHandler(rs *store.ReportStore, ts *store.TargetStore, ms *store.MemberStore, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{reports: rs, targets: ts, members: ms, logger: logger}
}

// summaryResponse is the full dashboard payload: the aggregation result
// plus the resolved allocation and pacing guidance for the month.
type summaryResponse struct {
	kpi.Summary
	Month      string         `json:"month"`
	Allocation kpi.Allocation `json:"allocation"`
	Pace       kpi.Pace       `json:"pace"`
}

// Get computes the KPI summary for a month. Query parameters: month
// (YYYY-MM, defaults to the current month), member_id, and from/to date
// overrides within the month.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	month := q.Get("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	if !validMonth(month) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}

	filter := kpi.Filter{From: month + "-01", To: month + "-31"}
	if v := q.Get("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member_id"})
			return
		}
		filter.MemberID = id
	}
	if v := q.Get("from"); v != "" {
		if !validDate(v) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be YYYY-MM-DD"})
			return
		}
		filter.From = v
	}
	if v := q.Get("to"); v != "" {
		if !validDate(v) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be YYYY-MM-DD"})
			return
		}
		filter.To = v
	}

	reports, err := h.reports.List(store.ReportFilter{From: filter.From, To: filter.To})
	if err != nil {
		h.logger.Error("list reports", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load reports"})
		return
	}

	members, err := h.members.List()
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load members"})
		return
	}
	memberIDs := make([]int64, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	teamTarget := 0.0
	if t, err := h.targets.GetTeamTarget(month); err != nil {
		h.logger.Error("get team target", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load team target"})
		return
	} else if t != nil {
		teamTarget = float64(t.Target)
	}

	shares, err := h.targets.GetShares(month)
	if err != nil {
		h.logger.Error("get allocation shares", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load allocation"})
		return
	}
	if len(shares) == 0 {
		shares = kpi.EqualShares(memberIDs)
	}
	alloc := kpi.ResolveAllocation(teamTarget, shares, memberIDs)

	summary := kpi.Summarize(reports, filter, alloc.Amounts, teamTarget, month, time.Now().UTC())

	// The pacing window comes from the month's campaign when one is
	// configured, otherwise the calendar month.
	start, _ := time.Parse("2006-01", month)
	end := start.AddDate(0, 1, -1)
	if c, err := h.targets.GetCampaign(month); err == nil && c != nil {
		if s, err := time.Parse("2006-01-02", c.StartDate); err == nil {
			start = s
		}
		if e, err := time.Parse("2006-01-02", c.EndDate); err == nil {
			end = e
		}
		if c.Target > 0 {
			teamTarget = float64(c.Target)
		}
	}
	pace := kpi.DerivePace(start, end, teamTarget, len(members), summary.Rates)

	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:    summary,
		Month:      month,
		Allocation: alloc,
		Pace:       pace,
	})
}
