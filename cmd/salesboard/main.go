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
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/salesboard/internal/app"
	"github.com/odyssey-erp/salesboard/internal/observability"
	"github.com/odyssey-erp/salesboard/internal/platform/cache"
	"github.com/odyssey-erp/salesboard/internal/salesreport"
	"github.com/odyssey-erp/salesboard/internal/salesreport/export"
	salesreporthttp "github.com/odyssey-erp/salesboard/internal/salesreport/http"
	"github.com/odyssey-erp/salesboard/internal/salesreport/source"
	"github.com/odyssey-erp/salesboard/jobs"
)

const sweepInterval = time.Minute

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	metrics := observability.NewMetrics()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

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

	reportCache := salesreport.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, func(version int64) {
		logger.Info("report cache invalidated", slog.Int64("version", version))
	}); err != nil {
		logger.Warn("report cache invalidation listener", slog.Any("error", err))
	}
	reportService := salesreport.NewService(posClient, reportCache, logger, salesreport.ServiceConfig{
		MaxRange: cfg.ReportMaxRange,
		Observer: metrics,
	})
	registry := salesreport.NewRegistry(cfg.BoardIdleTTL)
	pdfExporter := &export.PDFExporter{Endpoint: cfg.GotenbergURL, Client: &http.Client{Timeout: 30 * time.Second}}
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := pdfExporter.Ping(pingCtx); err != nil {
		logger.Warn("gotenberg unavailable, pdf export will fail", slog.Any("error", err))
	}
	cancelPing()

	salesHandler := salesreporthttp.NewHandler(logger, reportService, registry, pdfExporter, salesreporthttp.Options{
		Money:        salesreporthttp.NewMoneyFormatter(cfg.ReportLocale, cfg.ReportCurrencySymbol),
		SecureCookie: cfg.IsProduction(),
	})

	var jobHandler *jobs.Handler
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)

		jobClient, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Warn("init job client", slog.Any("error", err))
		} else {
			if _, err := jobClient.EnqueueReportWarmup(ctx, jobs.ReportWarmupPayload{}); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
				logger.Warn("enqueue report warmup", slog.Any("error", err))
			}
			_ = jobClient.Close()
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		SalesHandler: salesHandler,
		JobHandler:   jobHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go sweepBoards(ctx, registry, metrics, logger)

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func sweepBoards(ctx context.Context, registry *salesreport.Registry, metrics *observability.Metrics, logger *slog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := registry.Sweep(); evicted > 0 {
				logger.Debug("evicted idle boards", slog.Int("count", evicted))
			}
			metrics.SetActiveBoards(registry.Len())
		}
	}
}
