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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/ccube-expense/ccube-expense/internal/advisory"
	"github.com/ccube-expense/ccube-expense/internal/app"
	"github.com/ccube-expense/ccube-expense/internal/auth"
	"github.com/ccube-expense/ccube-expense/internal/expense"
	"github.com/ccube-expense/ccube-expense/internal/export"
	"github.com/ccube-expense/ccube-expense/internal/observability"
	"github.com/ccube-expense/ccube-expense/internal/platform/cache"
	"github.com/ccube-expense/ccube-expense/internal/platform/db"
	"github.com/ccube-expense/ccube-expense/internal/project"
	"github.com/ccube-expense/ccube-expense/internal/shared"
	"github.com/ccube-expense/ccube-expense/internal/snapshot"
	"github.com/ccube-expense/ccube-expense/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	if err := auditLogger.EnsureSchema(ctx); err != nil {
		logger.Error("audit schema", slog.Any("error", err))
		os.Exit(1)
	}

	snapshots := snapshot.NewStore(pool)
	if err := snapshots.EnsureSchema(ctx); err != nil {
		logger.Error("snapshot schema", slog.Any("error", err))
		os.Exit(1)
	}

	registry := project.NewRegistry()
	if err := project.Seed(registry); err != nil {
		logger.Error("seed projects", slog.Any("error", err))
		os.Exit(1)
	}

	advisoryQueue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, registry)
	defer func() {
		if err := advisoryQueue.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	store := expense.NewStore()
	service := expense.NewService(store, registry, snapshots, auditLogger, advisoryQueue, logger, cfg.PurchaseRequestThreshold)

	claims, err := snapshots.Load(ctx)
	if err != nil {
		logger.Error("load snapshot", slog.Any("error", err))
		os.Exit(1)
	}
	if len(claims) > 0 {
		service.Restore(claims)
		logger.Info("restored claims from snapshot", slog.Int("count", len(claims)))
	}

	sessions := auth.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	authService := auth.NewService(cfg.AdminPasswordHash)
	authHandler := auth.NewHandler(logger, authService, sessions)

	advisoryCache := advisory.NewCache(redisClient, cfg.AdvisoryCacheTTL)
	expenseHandler := expense.NewHandler(logger, service, advisoryCache)
	projectHandler := project.NewHandler(logger, registry, service, auditLogger)
	exportHandler := export.NewHandler(logger, export.NewWriter(registry), service)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Sessions:       sessions,
		Metrics:        metrics,
		AuthHandler:    authHandler,
		ExpenseHandler: expenseHandler,
		ProjectHandler: projectHandler,
		ExportHandler:  exportHandler,
		JobsHandler:    jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}
