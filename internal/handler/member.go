package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bantest04/Manager-KPI2026/internal/auth"
	"github.com/bantest04/Manager-KPI2026/internal/model"
	"github.com/bantest04/Manager-KPI2026/internal/store"
	"github.com/bantest04/Manager-KPI2026/internal/websocket"
)

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type MemberHandler struct {
	members  *store.MemberStore
	sessions *store.SessionStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewMemberHandler(ms *store.MemberStore, ss *store.SessionStore, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: ms, sessions: ss, hub: hub, logger: logger}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.List()
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list members"})
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

// Update renames or recolors a member. Leader-only, enforced at the router.
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.members.GetByID(id)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Color == "" {
		req.Color = existing.Color
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "color must be a hex color (e.g. #FF0000)"})
		return
	}

	exists, err := h.members.NameExists(req.Name, id)
	if err != nil {
		h.logger.Error("check member name", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check name"})
		return
	}
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a member with that name already exists"})
		return
	}

	member, err := h.members.Update(id, req.Name, req.Color)
	if err != nil {
		h.logger.Error("update member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update member"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityMember, "updated", member.ID, nil))
	writeJSON(w, http.StatusOK, member)
}

// ChangePIN swaps a member's PIN after verifying the old one. Members may
// only change their own PIN; a leader may reset anyone's.
func (h *MemberHandler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	identity, _ := auth.FromContext(r.Context())
	if identity.MemberID != id && !auth.IsLeader(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "cannot change another member's PIN"})
		return
	}

	member, err := h.members.GetByID(id)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	var req struct {
		OldPIN string `json:"old_pin"`
		NewPIN string `json:"new_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if len(req.NewPIN) != 4 || !isDigits(req.NewPIN) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be exactly 4 digits"})
		return
	}

	hash, err := h.members.GetPINHash(id)
	if err != nil {
		h.logger.Error("get pin hash", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get PIN"})
		return
	}

	// The old PIN is verified unless a leader is resetting someone else's.
	leaderReset := identity.MemberID != id && auth.IsLeader(r.Context())
	if !leaderReset && hash != "" {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.OldPIN)) != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect PIN"})
			return
		}
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPIN), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to hash PIN"})
		return
	}
	if err := h.members.SetPIN(id, string(newHash)); err != nil {
		h.logger.Error("set pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set PIN"})
		return
	}

	// Other devices logged in as this member must re-authenticate.
	if err := h.sessions.DeleteByMemberID(id); err != nil {
		h.logger.Error("invalidate sessions", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "pin changed"})
}
