package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/pkg/database"
	"github.com/sefazor/guestlens-backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Config'i yükle
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	baseLogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer baseLogger.Sync() //nolint:errcheck

	db, err := database.NewDatabase(cfg)
	if err != nil {
		baseLogger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		baseLogger.Fatal("failed to migrate database", zap.Error(err))
	}
	if cfg.Database.Seed {
		if err := database.Seed(db); err != nil {
			baseLogger.Fatal("failed to seed database", zap.Error(err))
		}
	}

	// ERROR seviyesindeki loglar app_error_logs tablosuna da yazılır
	sink := logger.NewDBSink(db)
	appLogger := logger.WithSink(baseLogger, sink)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			appLogger.Error("sentry init failed", zap.Error(err))
		}
	}

	ctx := context.Background()
	app, err := InitializeApp(ctx, cfg, db, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize app", zap.Error(err))
	}

	if err := app.Scheduler.Start(); err != nil {
		appLogger.Fatal("failed to start scheduler", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		appLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := app.Server.Listen(":" + cfg.Server.Port); err != nil {
			appLogger.Error("server failed to start", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	appLogger.Info("shutting down server")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if err := app.Server.ShutdownWithTimeout(timeout); err != nil {
		appLogger.Error("server shutdown error", zap.Error(err))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	app.Scheduler.Stop(stopCtx)
	cancel()

	sink.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			baseLogger.Error("database close error", zap.Error(err))
		}
	}

	baseLogger.Info("server stopped")
}
