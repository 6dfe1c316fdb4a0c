package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bank-dashboard/internal/config"
	"bank-dashboard/internal/database"
	"bank-dashboard/internal/logging"
	"bank-dashboard/internal/repositories"
	"bank-dashboard/internal/server"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const purgeInterval = time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg, logger)
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("close database", "error", err)
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var cache *redis.Client
	if cfg.Redis.URL != "" {
		cache, err = database.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, login limiter disabled", "error", err)
		} else {
			defer func() {
				if err := cache.Close(); err != nil {
					logger.Warn("close redis", "error", err)
				}
			}()
		}
	}

	srv := server.New(cfg, db, cache, prometheus.NewRegistry(), logger)

	auditRepo := repositories.NewAuditLogRepository(db.DB)
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purge(db, auditRepo, cfg.Security.AuditRetention, logger)
			}
		}
	}()

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

// purge drops expired blacklist rows and audit rows older than retention.
// A non-positive retention keeps the audit log forever.
func purge(db *database.DB, audit repositories.AuditLogRepositoryInterface, retention time.Duration, logger *slog.Logger) {
	n, err := db.CleanupExpiredTokens()
	if err != nil {
		logger.Warn("token cleanup failed", "error", err)
	} else if n > 0 {
		logger.Info("expired tokens removed", "count", n)
	}

	if retention <= 0 {
		return
	}
	n, err = audit.DeleteOlderThan(retention)
	if err != nil {
		logger.Warn("audit log cleanup failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("old audit logs removed", "count", n, "retention", retention.String())
	}
}
