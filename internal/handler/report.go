package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bantest04/Manager-KPI2026/internal/auth"
	"github.com/bantest04/Manager-KPI2026/internal/model"
	"github.com/bantest04/Manager-KPI2026/internal/store"
	"github.com/bantest04/Manager-KPI2026/internal/websocket"
)

type ReportHandler struct {
	reports *store.ReportStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewReportHandler(rs *store.ReportStore, hub *websocket.Hub, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: rs, hub: hub, logger: logger}
}

// reportRequest is the mutable subset of a report accepted from clients.
type reportRequest struct {
	MemberID     int64  `json:"member_id"`
	ReportDate   string `json:"report_date"`
	Reach        int64  `json:"reach"`
	Responses    int64  `json:"responses"`
	Deals        int64  `json:"deals"`
	Revenue      int64  `json:"revenue"`
	Product      string `json:"product"`
	Channel      string `json:"channel"`
	Warehouse    string `json:"warehouse"`
	OrderCode    string `json:"order_code"`
	OrderDate    string `json:"order_date"`
	CustomerName string `json:"customer_name"`
	CustomerLink string `json:"customer_link"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Status       string `json:"status"`
	Note         string `json:"note"`
}

// validate enforces the boundary rules: counters non-negative and dates in
// canonical form. Returns an error message, or "" when the request is fine.
func (req *reportRequest) validate() string {
	if !validDate(req.ReportDate) {
		return "report_date must be YYYY-MM-DD"
	}
	if req.OrderDate != "" && !validDate(req.OrderDate) {
		return "order_date must be YYYY-MM-DD"
	}
	if req.Reach < 0 || req.Responses < 0 || req.Deals < 0 || req.Revenue < 0 {
		return "reach, responses, deals and revenue must be non-negative"
	}
	return ""
}

func (req *reportRequest) toModel() model.Report {
	return model.Report{
		MemberID:     req.MemberID,
		ReportDate:   req.ReportDate,
		Reach:        req.Reach,
		Responses:    req.Responses,
		Deals:        req.Deals,
		Revenue:      req.Revenue,
		Product:      req.Product,
		Channel:      req.Channel,
		Warehouse:    req.Warehouse,
		OrderCode:    req.OrderCode,
		OrderDate:    req.OrderDate,
		CustomerName: req.CustomerName,
		CustomerLink: req.CustomerLink,
		Address:      req.Address,
		Phone:        req.Phone,
		Status:       req.Status,
		Note:         req.Note,
	}
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter store.ReportFilter

	if v := r.URL.Query().Get("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member_id"})
			return
		}
		filter.MemberID = id
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if !validDate(v) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be YYYY-MM-DD"})
			return
		}
		filter.From = v
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if !validDate(v) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be YYYY-MM-DD"})
			return
		}
		filter.To = v
	}

	reports, err := h.reports.List(filter)
	if err != nil {
		h.logger.Error("list reports", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list reports"})
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	identity, _ := auth.FromContext(r.Context())
	if req.MemberID == 0 {
		req.MemberID = identity.MemberID
	}
	// Regular members report for themselves; leaders may backfill for others.
	if req.MemberID != identity.MemberID && !auth.IsLeader(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "cannot create a report for another member"})
		return
	}

	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	report, err := h.reports.Create(req.toModel())
	if err != nil {
		h.logger.Error("create report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create report"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityReport, "created", report.ID, map[string]any{
		"member_id": report.MemberID,
	}))
	writeJSON(w, http.StatusCreated, report)
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.reports.GetByID(id)
	if err != nil {
		h.logger.Error("get report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get report"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return
	}

	identity, _ := auth.FromContext(r.Context())
	if existing.MemberID != identity.MemberID && !auth.IsLeader(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the owner or a leader may edit a report"})
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	// A report stays attributed to its original member.
	req.MemberID = existing.MemberID

	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	report, err := h.reports.Update(id, req.toModel())
	if err != nil {
		h.logger.Error("update report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update report"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityReport, "updated", report.ID, map[string]any{
		"member_id": report.MemberID,
	}))
	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if !auth.IsLeader(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only a leader may delete reports"})
		return
	}

	existing, err := h.reports.GetByID(id)
	if err != nil {
		h.logger.Error("get report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get report"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return
	}

	if err := h.reports.Delete(id); err != nil {
		h.logger.Error("delete report", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete report"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityReport, "deleted", id, map[string]any{
		"member_id": existing.MemberID,
	}))
	w.WriteHeader(http.StatusNoContent)
}
