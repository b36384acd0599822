package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bantest04/Manager-KPI2026/internal/backup"
	"github.com/bantest04/Manager-KPI2026/internal/database"
	"github.com/bantest04/Manager-KPI2026/internal/logging"
	"github.com/bantest04/Manager-KPI2026/internal/model"
	"github.com/bantest04/Manager-KPI2026/internal/server"
	"github.com/bantest04/Manager-KPI2026/internal/store"
)

// defaultMembers is the initial team roster, applied only when the
// members table is empty. PINs are defaults and should be changed on
// first login.
var defaultMembers = []store.SeedMember{
	{Name: "Mỹ Anh", Color: "#fbbf24", Role: model.RoleLeader, PIN: "1234"},
	{Name: "Vũ", Color: "#3b82f6", Role: model.RoleRegular, PIN: "1111"},
	{Name: "Quỳnh", Color: "#10b981", Role: model.RoleRegular, PIN: "2222"},
	{Name: "Ngân", Color: "#ef4444", Role: model.RoleRegular, PIN: "3333"},
}

func main() {
	logger := logging.Setup(os.Getenv("KPI_LOG_LEVEL"))

	port := os.Getenv("KPI_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("KPI_DB_PATH")
	if dbPath == "" {
		dbPath = "kpi.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("KPI_S3_ENDPOINT"),
			Bucket:    os.Getenv("KPI_S3_BUCKET"),
			Region:    os.Getenv("KPI_S3_REGION"),
			AccessKey: os.Getenv("KPI_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("KPI_S3_SECRET_KEY"),
		},
		DBPath: dbPath,
	}
	if backupCfg.S3.Region == "" {
		backupCfg.S3.Region = "auto"
	}

	srv := server.New(db, backupCfg, logger)

	if err := srv.MemberStore().EnsureSeed(defaultMembers); err != nil {
		logger.Error("seed members", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	// Hourly cleanup of expired sessions and stale rate-limit entries.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("kpi server listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
