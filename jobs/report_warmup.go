package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/odyssey-erp/salesboard/internal/jobs"
	"github.com/odyssey-erp/salesboard/internal/salesreport"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DefaultWarmupWindows covers today, yesterday onwards and the trailing week.
var DefaultWarmupWindows = []int{1, 2, 7}

const warmupConcurrency = 2

// ReportLoader loads a report through the cache.
type ReportLoader interface {
	Load(ctx context.Context, filter salesreport.Filter) (salesreport.Report, error)
}

// ReportInvalidator drops cached reports.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ReportWarmupJob pre-populates the report cache so the first operator fetch is fast.
type ReportWarmupJob struct {
	Loader   ReportLoader
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	// MaxRange mirrors the service filter bound; longer windows are skipped.
	MaxRange time.Duration
	clock    func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(loader ReportLoader, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Loader:  loader,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Loader == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskReportWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := j.now()
	filters := warmupFilters(start, payload, j.MaxRange)
	logger := j.logger().With(slog.Int("filters", len(filters)))
	if len(filters) == 0 {
		logger.Warn("no warmup window fits the report range", slog.Any("windows", payload.Windows))
		return nil
	}
	logger.Info("starting report warmup")

	var warmed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmupConcurrency)
	for _, filter := range filters {
		filter := filter
		g.Go(func() error {
			filterCtx, cancel := context.WithTimeout(gctx, 20*time.Second)
			defer cancel()
			if _, err := j.Loader.Load(filterCtx, filter); err != nil {
				logger.Error("warm filter", slog.String("filter", filter.Key()), slog.Any("error", err))
				return err
			}
			warmed.Add(1)
			return nil
		})
	}
	resultErr = g.Wait()
	j.metrics().AddWarmed(TaskReportWarmup, int(warmed.Load()))
	if errors.Is(resultErr, salesreport.ErrInvalidFilter) {
		return fmt.Errorf("%w: %w", asynq.SkipRetry, resultErr)
	}
	if resultErr != nil {
		return resultErr
	}

	logger.Info("completed report warmup", slog.Int64("warmed", warmed.Load()), slog.Duration("duration", j.now().Sub(start)))
	return nil
}

// warmupFilters expands the payload into concrete filters ending on the day of
// now. Windows spanning more than maxRange are dropped when maxRange is positive.
func warmupFilters(now time.Time, payload ReportWarmupPayload, maxRange time.Duration) []salesreport.Filter {
	windows := payload.Windows
	if len(windows) == 0 {
		windows = DefaultWarmupWindows
	}
	days := make([]int, 0, len(windows))
	seen := make(map[int]struct{}, len(windows))
	for _, w := range windows {
		if w <= 0 {
			continue
		}
		if maxRange > 0 && time.Duration(w-1)*24*time.Hour > maxRange {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		days = append(days, w)
	}
	sort.Ints(days)

	orderTypes := append([]string{""}, payload.OrderTypes...)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	filters := make([]salesreport.Filter, 0, len(days)*len(orderTypes))
	for _, d := range days {
		from := to.AddDate(0, 0, -(d - 1))
		for _, ot := range orderTypes {
			filters = append(filters, salesreport.Filter{From: from, To: to, OrderType: ot}.Normalize())
		}
	}
	return filters
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// ReportInvalidateJob bumps the report cache version.
type ReportInvalidateJob struct {
	Invalidator ReportInvalidator
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// Handle processes cache invalidation tasks.
func (j *ReportInvalidateJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Invalidator == nil {
		return errors.New("report invalidate: handler not configured")
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskReportInvalidate)
	err := j.Invalidator.Invalidate(ctx)
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err != nil {
		logger.Error("invalidate report cache", slog.String("job", TaskReportInvalidate), slog.Any("error", err))
	} else {
		logger.Info("report cache invalidated", slog.String("job", TaskReportInvalidate))
	}
	return tracker.End(err)
}
