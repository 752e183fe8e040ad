// Gente Networking | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gente-networking/backend/internal/activity"
	"github.com/gente-networking/backend/internal/admin"
	"github.com/gente-networking/backend/internal/auth"
	"github.com/gente-networking/backend/internal/config"
	"github.com/gente-networking/backend/internal/core"
	"github.com/gente-networking/backend/internal/health"
	"github.com/gente-networking/backend/internal/member"
	"github.com/gente-networking/backend/internal/middleware"
	"github.com/gente-networking/backend/internal/scoring"
	"github.com/gente-networking/backend/internal/server"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return err
	}
	logger.Info("token verifier initialized",
		"algorithm", "ES256",
		"issuer", cfg.Auth.Issuer,
	)

	rules, err := scoring.NewRules(cfg.Scoring)
	if err != nil {
		return err
	}
	logger.Info("scoring rules loaded",
		"version", rules.Version,
		"tiers", len(rules.Tiers),
	)

	memberRepo := member.NewRepository(db.DB)
	memberSvc := member.NewService(memberRepo, rules)
	memberHandler := member.NewHandler(memberSvc)

	activityRepo := activity.NewRepository(db.DB)

	scoreStore := scoring.NewRepository(db.DB)
	recalculator := scoring.NewRecalculator(scoring.RecalculatorConfig{
		Counts:          activityRepo,
		Store:           scoreStore,
		Locker:          scoring.NewRedisLocker(redis.Client, cfg.Scoring.LockTTL),
		Rules:           rules,
		Logger:          logger,
		BulkConcurrency: cfg.Scoring.BulkConcurrency,
	})
	scoringHandler := scoring.NewHandler(scoring.HandlerConfig{
		Recalculator:    recalculator,
		Store:           scoreStore,
		HistoryPageSize: cfg.Scoring.HistoryPageSize,
		HistoryMaxSize:  cfg.Scoring.HistoryMaxPageSize,
	})

	activitySvc := activity.NewService(
		activityRepo,
		memberSvc,
		recalculator,
		logger,
	)
	activityHandler := activity.NewHandler(activitySvc)

	healthHandler := health.NewHandler()
	healthHandler.Register("database", db)
	healthHandler.Register("redis", redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DB:         db.DB,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	// Authenticated traffic gets per-member limits on top of the global
	// per-IP limiter; admins get a higher ceiling for bulk operations.
	roleLimiter := middleware.RoleRateLimiter(
		redis.Client,
		middleware.DefaultRoleLimits,
	)
	verify := middleware.Authenticator(verifier)
	authenticator := func(next http.Handler) http.Handler {
		return verify(roleLimiter(next))
	}
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		memberHandler.RegisterRoutes(r, authenticator)
		memberHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		activityHandler.RegisterRoutes(r, authenticator)

		scoringHandler.RegisterRoutes(r, authenticator)
		scoringHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
