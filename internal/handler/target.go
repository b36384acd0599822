package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bantest04/Manager-KPI2026/internal/kpi"
	"github.com/bantest04/Manager-KPI2026/internal/model"
	"github.com/bantest04/Manager-KPI2026/internal/store"
	"github.com/bantest04/Manager-KPI2026/internal/websocket"
)

type TargetHandler struct {
	targets *store.TargetStore
	members *store.MemberStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewTargetHandler(ts *store.TargetStore, ms *store.MemberStore, hub *websocket.Hub, logger *slog.Logger) *TargetHandler {
	return &TargetHandler{targets: ts, members: ms, hub: hub, logger: logger}
}

func monthParam(r *http.Request) (string, bool) {
	month := r.PathValue("month")
	return month, validMonth(month)
}

func (h *TargetHandler) GetTeamTarget(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}

	target, err := h.targets.GetTeamTarget(month)
	if err != nil {
		h.logger.Error("get team target", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get team target"})
		return
	}
	if target == nil {
		// An unconfigured month reads as target 0 rather than 404.
		writeJSON(w, http.StatusOK, model.TeamTarget{Month: month})
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (h *TargetHandler) SetTeamTarget(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}

	var req struct {
		Target int64 `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Target < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target must be non-negative"})
		return
	}

	target, err := h.targets.SetTeamTarget(month, req.Target)
	if err != nil {
		h.logger.Error("set team target", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set team target"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityTeamTarget, "updated", target.ID, map[string]any{
		"month": month,
	}))
	writeJSON(w, http.StatusOK, target)
}

// allocationResponse pairs the raw shares with their resolved preview.
type allocationResponse struct {
	Month      string            `json:"month"`
	Shares     map[int64]float64 `json:"shares"`
	EqualSplit bool              `json:"equal_split"`
	Allocation kpi.Allocation    `json:"allocation"`
}

// GetAllocation returns a month's shares plus the absolute amounts they
// resolve to. A month with no saved shares falls back to an equal split.
func (h *TargetHandler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}

	shares, err := h.targets.GetShares(month)
	if err != nil {
		h.logger.Error("get allocation shares", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get allocation"})
		return
	}

	members, err := h.members.List()
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list members"})
		return
	}
	memberIDs := make([]int64, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	equalSplit := len(shares) == 0
	if equalSplit {
		shares = kpi.EqualShares(memberIDs)
	}

	teamTarget := 0.0
	if t, err := h.targets.GetTeamTarget(month); err == nil && t != nil {
		teamTarget = float64(t.Target)
	}

	writeJSON(w, http.StatusOK, allocationResponse{
		Month:      month,
		Shares:     shares,
		EqualSplit: equalSplit,
		Allocation: kpi.ResolveAllocation(teamTarget, shares, memberIDs),
	})
}

// SetAllocation replaces a month's shares. Shares that do not sum to
// 100±tolerance are rejected with 422 and the resolved preview, so the
// client can show what the bad shares would have meant.
func (h *TargetHandler) SetAllocation(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}

	var req struct {
		Shares map[int64]float64 `json:"shares"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.Shares) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shares are required"})
		return
	}
	for id, pct := range req.Shares {
		if pct < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shares must be non-negative"})
			return
		}
		member, err := h.members.GetByID(id)
		if err != nil {
			h.logger.Error("get member", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check member"})
			return
		}
		if member == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown member in shares"})
			return
		}
	}

	memberIDs := make([]int64, 0, len(req.Shares))
	for id := range req.Shares {
		memberIDs = append(memberIDs, id)
	}

	teamTarget := 0.0
	if t, err := h.targets.GetTeamTarget(month); err == nil && t != nil {
		teamTarget = float64(t.Target)
	}

	alloc := kpi.ResolveAllocation(teamTarget, req.Shares, memberIDs)
	if !alloc.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "shares must sum to 100",
			"allocation": alloc,
		})
		return
	}

	if err := h.targets.ReplaceShares(month, req.Shares); err != nil {
		h.logger.Error("replace allocation shares", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save allocation"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityAllocation, "updated", 0, map[string]any{
		"month": month,
	}))
	writeJSON(w, http.StatusOK, allocationResponse{
		Month:      month,
		Shares:     req.Shares,
		Allocation: alloc,
	})
}

func (h *TargetHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.targets.ListCampaigns()
	if err != nil {
		h.logger.Error("list campaigns", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list campaigns"})
		return
	}
	if campaigns == nil {
		campaigns = []model.CampaignTarget{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// UpsertCampaign creates or rewrites a month's campaign window.
func (h *TargetHandler) UpsertCampaign(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	if !validMonth(month) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}

	var req struct {
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		WorkingDays int    `json:"working_days"`
		Target      int64  `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !validDate(req.StartDate) || !validDate(req.EndDate) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date and end_date must be YYYY-MM-DD"})
		return
	}
	if req.EndDate < req.StartDate {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must not precede start_date"})
		return
	}
	if req.WorkingDays < 1 || req.Target < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "working_days must be at least 1 and target non-negative"})
		return
	}

	campaign, err := h.targets.UpsertCampaign(month, req.StartDate, req.EndDate, req.WorkingDays, req.Target)
	if err != nil {
		h.logger.Error("upsert campaign", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save campaign"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityCampaign, "updated", 0, map[string]any{
		"month": month,
	}))
	writeJSON(w, http.StatusOK, campaign)
}
