package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bantest04/Manager-KPI2026/internal/backup"
	"github.com/bantest04/Manager-KPI2026/internal/handler"
	"github.com/bantest04/Manager-KPI2026/internal/middleware"
	"github.com/bantest04/Manager-KPI2026/internal/store"
	ws "github.com/bantest04/Manager-KPI2026/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH    *handler.AuthHandler
	memberH  *handler.MemberHandler
	reportH  *handler.ReportHandler
	targetH  *handler.TargetHandler
	summaryH *handler.SummaryHandler
	backupH  *handler.BackupHandler

	memberStore   *store.MemberStore
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, backupCfg backup.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	memberStore := store.NewMemberStore(db)
	reportStore := store.NewReportStore(db)
	targetStore := store.NewTargetStore(db)
	sessionStore := store.NewSessionStore(db)
	settingsStore := store.NewSettingsStore(db)
	backupStore := store.NewBackupStore(db)

	backupMgr := backup.NewManager(backupCfg, db, backupStore, settingsStore, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(memberStore, sessionStore, logger.With("component", "auth")),
		memberH:       handler.NewMemberHandler(memberStore, sessionStore, hub, logger.With("component", "member")),
		reportH:       handler.NewReportHandler(reportStore, hub, logger.With("component", "report")),
		targetH:       handler.NewTargetHandler(targetStore, memberStore, hub, logger.With("component", "target")),
		summaryH:      handler.NewSummaryHandler(reportStore, targetStore, memberStore, logger.With("component", "summary")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, settingsStore, logger.With("component", "backup")),
		memberStore:   memberStore,
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// MemberStore returns the member store for boot-time seeding.
func (s *Server) MemberStore() *store.MemberStore {
	return s.memberStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /api/members", s.memberH.List) // login screen needs the member roster
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.memberStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	// Member routes
	mux.Handle("PUT /api/members/{id}", middleware.RequireLeader(http.HandlerFunc(s.memberH.Update)))
	mux.HandleFunc("PUT /api/members/{id}/pin", s.memberH.ChangePIN)

	// Report routes. Role rules (owner-or-leader update, leader-only
	// delete) live in the handler because they depend on the row.
	mux.HandleFunc("GET /api/reports", s.reportH.List)
	mux.HandleFunc("POST /api/reports", s.reportH.Create)
	mux.HandleFunc("PUT /api/reports/{id}", s.reportH.Update)
	mux.HandleFunc("DELETE /api/reports/{id}", s.reportH.Delete)

	// Target and allocation routes — writes are leader-only
	mux.HandleFunc("GET /api/team-target/{month}", s.targetH.GetTeamTarget)
	mux.Handle("PUT /api/team-target/{month}", middleware.RequireLeader(http.HandlerFunc(s.targetH.SetTeamTarget)))
	mux.HandleFunc("GET /api/allocation/{month}", s.targetH.GetAllocation)
	mux.Handle("PUT /api/allocation/{month}", middleware.RequireLeader(http.HandlerFunc(s.targetH.SetAllocation)))
	mux.HandleFunc("GET /api/campaigns", s.targetH.ListCampaigns)
	mux.Handle("PUT /api/campaigns/{month}", middleware.RequireLeader(http.HandlerFunc(s.targetH.UpsertCampaign)))

	// KPI summary
	mux.HandleFunc("GET /api/kpi/summary", s.summaryH.Get)

	// Backup routes — leader-only
	mux.Handle("GET /api/backups", middleware.RequireLeader(http.HandlerFunc(s.backupH.List)))
	mux.Handle("GET /api/backups/status", middleware.RequireLeader(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("POST /api/backups/run", middleware.RequireLeader(http.HandlerFunc(s.backupH.RunNow)))
	mux.Handle("GET /api/backups/{id}/download", middleware.RequireLeader(http.HandlerFunc(s.backupH.Download)))
	mux.Handle("GET /api/settings/backup", middleware.RequireLeader(http.HandlerFunc(s.backupH.GetSettings)))
	mux.Handle("PUT /api/settings/backup", middleware.RequireLeader(http.HandlerFunc(s.backupH.UpdateSettings)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
