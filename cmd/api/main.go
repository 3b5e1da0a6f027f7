// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Fitmate HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the account database (SQLite file or PostgreSQL pool).
//  4. Run database migrations (idempotent).
//  5. Connect to Redis when REDIS_URL is set.
//  6. Wire HTTP handlers.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/fitmate/internal/api"
	"github.com/taibuivan/fitmate/internal/generate"
	"github.com/taibuivan/fitmate/internal/platform/config"
	"github.com/taibuivan/fitmate/internal/platform/constants"
	"github.com/taibuivan/fitmate/internal/platform/database"
	"github.com/taibuivan/fitmate/internal/platform/middleware"
	"github.com/taibuivan/fitmate/internal/platform/migration"
	pgstore "github.com/taibuivan/fitmate/internal/platform/postgres"
	redisstore "github.com/taibuivan/fitmate/internal/platform/redis"
	"github.com/taibuivan/fitmate/internal/platform/sec"
	sqlitestore "github.com/taibuivan/fitmate/internal/platform/sqlite"
	"github.com/taibuivan/fitmate/internal/users/account"
	"github.com/taibuivan/fitmate/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Session secret is checked before any I/O so a weak key never serves traffic.
	tokenService, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer, constants.SessionTTL)
	must(log, err, "initialize session tokens")

	// Startup deadline so misconfiguration is caught quickly.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Background work (limiter sweeps) lives until shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── 3. Account Database ───────────────────────────────────────────────
	location, err := database.Parse(cfg.DatabaseURL)
	must(log, err, "parse database url")

	// ── 4. Migrations ─────────────────────────────────────────────────────
	// Applied before the pool opens so the schema exists on first query.
	must(log, migration.RunUp(location, log), "run migrations")

	var (
		accountRepository account.Repository
		databaseCheck     func(ctx context.Context) error
	)

	switch location.Kind {
	case database.KindPostgres:
		pool, err := pgstore.NewPool(startupCtx, location.DriverDSN(), log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()
		accountRepository = account.NewPostgresRepository(pool)
		databaseCheck = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }

	default:
		db, err := sqlitestore.Open(startupCtx, location, log)
		must(log, err, "open sqlite database")
		defer func() {
			log.Info("closing_sqlite_database")
			if cerr := db.Close(); cerr != nil {
				log.Error("sqlite_close_failed", slog.Any("error", cerr))
			}
		}()
		accountRepository = account.NewSQLiteRepository(db)
		databaseCheck = func(ctx context.Context) error { return sqlitestore.Ping(ctx, db) }
	}

	// ── 5. Redis (optional) ───────────────────────────────────────────────
	var (
		rdb        *goredis.Client
		redisCheck func(ctx context.Context) error
	)
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
		redisCheck = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	} else {
		log.Info("rate_limit_store_memory")
	}

	limiters := api.Limiters{
		Global: middleware.NewLimiter(rootCtx, middleware.GlobalPolicy, rdb),
		API:    middleware.NewLimiter(rootCtx, middleware.APIPolicy, rdb),
	}

	// ── 6. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers([]api.HealthCheck{
		{Name: "database", Check: databaseCheck},
		{Name: "redis", Check: redisCheck},
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	accountService := account.NewService(accountRepository, sec.DefaultHasher(), log)
	authService := auth.NewService(accountService, tokenService, log)
	authHandler := auth.NewHandler(authService, tokenService, cfg.IsProduction())

	gemini := generate.NewGeminiClient(generate.GeminiConfig{
		BaseURL: cfg.GeminiBaseURL,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	})
	generateHandler := generate.NewHandler(generate.NewService(gemini, log))

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Generate:  generateHandler,
	}

	server := api.NewServer(cfg, log, limiters, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
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
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
