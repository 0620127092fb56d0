package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-sales-rules/internal/config"
	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
	"github.com/KasumiMercury/primind-sales-rules/internal/handler"
	"github.com/KasumiMercury/primind-sales-rules/internal/health"
	"github.com/KasumiMercury/primind-sales-rules/internal/infra/database"
	"github.com/KasumiMercury/primind-sales-rules/internal/infra/lock"
	"github.com/KasumiMercury/primind-sales-rules/internal/infra/repository"
	"github.com/KasumiMercury/primind-sales-rules/internal/observability/logging"
	"github.com/KasumiMercury/primind-sales-rules/internal/observability/metrics"
	"github.com/KasumiMercury/primind-sales-rules/internal/observability/middleware"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/deadline"
	"github.com/KasumiMercury/primind-sales-rules/internal/service/rule"
	"github.com/KasumiMercury/primind-sales-rules/internal/validation"
)

// Version is set via ldflags at build time
var Version = "dev"

const serviceModule = logging.Module("sales-rules")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	obs, err := initObservability(ctx, cfg.LogLevel)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	ruleMetrics, err := metrics.NewRuleMetrics()
	if err != nil {
		slog.Error("failed to initialize rule metrics", slog.String("error", err.Error()))
		return 1
	}

	db, customerRepo, err := initCustomerRepository(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to initialize customer repository", slog.String("error", err.Error()))
		return 1
	}
	if db != nil {
		defer func() {
			if err := database.Close(db); err != nil {
				slog.Warn("failed to close database", slog.String("error", err.Error()))
			}
		}()
	}

	redisClient, submissionLock, err := initSubmissionLock(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize submission lock", slog.String("error", err.Error()))
		return 1
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}()
	}

	draftValidator, err := validation.New()
	if err != nil {
		slog.Error("failed to initialize validator", slog.String("error", err.Error()))
		return 1
	}

	calculator := deadline.NewCalculator(cfg.Rule.LenientUnits)
	ruleService := rule.NewService(customerRepo, submissionLock, calculator, ruleMetrics, cfg.Rule.AllowBlanketUpdate)
	draftChecker := rule.NewDraftChecker(draftValidator, calculator, ruleMetrics)
	ruleHandler := handler.NewRuleHandler(ruleService, draftChecker)

	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		Module:      serviceModule,
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(Version).WithDatabase(db).WithRedis(redisClient)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	r.POST("/api/sales-rules", ruleHandler.HandleSubmit)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/sales-rules", ruleHandler.HandleSubmit)
		v1.POST("/sales-rules/drafts/validate", ruleHandler.HandleValidateDraft)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.Bool("database_enabled", cfg.Database.Enabled()),
			slog.String("lock_backend", string(cfg.Rule.LockBackend)),
			slog.Bool("lenient_units", cfg.Rule.LenientUnits),
			slog.Bool("allow_blanket_update", cfg.Rule.AllowBlanketUpdate),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

func initCustomerRepository(ctx context.Context, cfg *config.DatabaseConfig) (*gorm.DB, domain.CustomerRuleRepository, error) {
	if !cfg.Enabled() {
		slog.Warn("DATABASE_URL not set, rule updates will not be persisted")
		return nil, repository.NewNoopCustomerRuleRepository(), nil
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := repository.AutoMigrate(ctx, db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		slog.Info("customer rule columns migrated")
	}

	repo, err := repository.NewCustomerRuleRepository(db)
	if err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}

	slog.Info("database connected")
	return db, repo, nil
}

func initSubmissionLock(ctx context.Context, cfg *config.Config) (*redis.Client, domain.SubmissionLock, error) {
	if cfg.Rule.LockBackend == config.LockBackendMemory {
		slog.Info("submission lock initialized", slog.String("backend", string(config.LockBackendMemory)))
		return nil, lock.NewMemoryLock(cfg.Rule.LockTTL), nil
	}

	redisClient := redis.NewClient(cfg.Redis.Options())

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, nil, err
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, nil, err
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("addr", cfg.Redis.Addr),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("%w: submission lock backend %q at %s, set SUBMISSION_LOCK_BACKEND=memory to run without redis: %w",
			lock.ErrRedisConnection, config.LockBackendRedis, cfg.Redis.Addr, err)
	}

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	return redisClient, lock.NewRedisLock(redisClient, cfg.Redis.KeyPrefix, cfg.Rule.LockTTL), nil
}
