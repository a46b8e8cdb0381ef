// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

// Command api is the entry point for the Passgate authentication server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire the auth domain and the configured identity providers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tuanphan/passgate/internal/api"
	"github.com/tuanphan/passgate/internal/auth"
	"github.com/tuanphan/passgate/internal/platform/config"
	"github.com/tuanphan/passgate/internal/platform/constants"
	"github.com/tuanphan/passgate/internal/platform/migration"
	pgstore "github.com/tuanphan/passgate/internal/platform/postgres"
	redisstore "github.com/tuanphan/passgate/internal/platform/redis"
	"github.com/tuanphan/passgate/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "passgate"))
	slog.SetDefault(log)

	log.Info("[Passgate] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "passgate"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer, cfg.JWTExpiresIn)
	must(log, err, "initialize token service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	stateRepository := auth.NewStateRepository(rdb)
	authService := auth.NewService(userRepository, stateRepository, tokenService)
	authGuard := auth.NewGuard(userRepository, tokenService)

	authHandler := auth.NewHandler(authService, authGuard, auth.HandlerOptions{
		TokenTTL:            tokenService.TimeToLive(),
		SecureCookies:       cfg.IsProduction(),
		ExposeRecoveryCodes: cfg.ExposeRecoveryCodes,
	})

	// Providers with empty credentials stay unmounted; the handler answers
	// their routes with an error redirect.
	adapters := make([]auth.ProviderAdapter, 0, 3)
	if cfg.GoogleClientID != "" {
		adapters = append(adapters, auth.NewGoogleAdapter(
			cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.BaseURL+"/api/auth/google/callback",
		))
	}
	if cfg.FacebookClientID != "" {
		adapters = append(adapters, auth.NewFacebookAdapter(
			cfg.FacebookClientID, cfg.FacebookClientSecret,
			cfg.BaseURL+"/api/auth/facebook/callback",
		))
	}
	if cfg.GitHubClientID != "" {
		adapters = append(adapters, auth.NewGitHubAdapter(
			cfg.GitHubClientID, cfg.GitHubClientSecret,
			cfg.BaseURL+"/api/auth/github/callback",
		))
	}
	log.Info("federated_providers_mounted", slog.Int("count", len(adapters)))

	federatedHandler := auth.NewFederatedHandler(authService, adapters, cfg.BaseURL)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Federated: federatedHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()
	server := api.NewServer(serverCtx, cfg, log, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
