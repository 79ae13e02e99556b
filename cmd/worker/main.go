package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ccube-expense/ccube-expense/internal/advisory"
	"github.com/ccube-expense/ccube-expense/internal/app"
	"github.com/ccube-expense/ccube-expense/internal/platform/cache"
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

	oracle := advisory.NewOpenAIOracle(cfg.AdvisoryAPIKey, cfg.AdvisoryModel, cfg.AdvisoryTimeout, logger)
	advisoryCache := advisory.NewCache(redisClient, cfg.AdvisoryCacheTTL)
	advisoryJob := jobs.NewAdvisoryJob(oracle, advisoryCache, logger)

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeAdvisoryAnalyze, Handler: advisoryJob.Handle},
		},
	})

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
