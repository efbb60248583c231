package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/forte-savings/backend/internal/config"
	"github.com/forte-savings/backend/internal/database"
	"github.com/forte-savings/backend/internal/logger"
	"github.com/forte-savings/backend/internal/server"
	"github.com/forte-savings/backend/internal/services"
	"github.com/forte-savings/backend/internal/version"
)

func main() {
	// Setup logging with rotation
	logDir := "data/logs"
	_ = os.MkdirAll(logDir, 0o755)

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "forte.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Log to both stdout and file
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))
	logger.WithFields(map[string]interface{}{"version": version.Full()}).
		Infof("starting %s backend", version.Name)

	if cfg.JWTSecret == "" {
		log.Fatal("FORTE_JWT_SECRET must be set")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("setup server: %v", err)
	}

	// Nightly reconciliation of denormalized totals plus audit retention.
	notifier := services.NewNotificationService(cfg.AlertURLs)
	reconciler := services.NewReconcileService(db, notifier, services.NewAuditService(db), cfg.AuditRetentionDays)
	if err := reconciler.Start(cfg.ReconcileSchedule); err != nil {
		log.Fatalf("start reconciler: %v", err)
	}
	defer reconciler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(map[string]interface{}{"port": cfg.HTTPPort}).Info("listening")
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
