package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/salesboard/internal/app"
	jobmetrics "github.com/odyssey-erp/salesboard/internal/jobs"
	"github.com/odyssey-erp/salesboard/internal/platform/cache"
	"github.com/odyssey-erp/salesboard/internal/salesreport"
	"github.com/odyssey-erp/salesboard/internal/salesreport/source"
	"github.com/odyssey-erp/salesboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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

	posClient, err := source.NewClient(source.Config{
		BaseURL:    cfg.POSAPIURL,
		Token:      cfg.POSAPIToken,
		Timeout:    cfg.POSAPITimeout,
		RetryCount: cfg.POSAPIRetries,
	}, logger)
	if err != nil {
		logger.Error("init pos client", slog.Any("error", err))
		os.Exit(1)
	}

	reportService := salesreport.NewService(posClient, salesreport.NewCache(redisClient, cfg.ReportCacheTTL), logger, salesreport.ServiceConfig{
		MaxRange: cfg.ReportMaxRange,
	})
	metrics := jobmetrics.NewMetrics(nil)

	warmupJob := jobs.NewReportWarmupJob(reportService, logger, metrics)
	warmupJob.MaxRange = cfg.ReportMaxRange
	invalidateJob := &jobs.ReportInvalidateJob{Invalidator: reportService, Logger: logger, Metrics: metrics}

	warmupTask, err := jobs.NewReportWarmupTask(jobs.ReportWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskReportInvalidate, Handler: invalidateJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
