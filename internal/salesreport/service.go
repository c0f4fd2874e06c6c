package salesreport

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Source fetches pre-aggregated reports from the POS back office.
type Source interface {
	FetchReport(ctx context.Context, filter Filter) (Report, error)
}

// FetchObserver records the outcome of upstream fetches.
type FetchObserver interface {
	ObserveFetch(outcome string, elapsed time.Duration)
}

// Fetch outcomes reported to the FetchObserver.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailure = "failure"
)

// ServiceConfig tunes the service.
type ServiceConfig struct {
	MaxRange time.Duration
	Observer FetchObserver
}

// Service coordinates upstream fetches with the cache and board lifecycle.
type Service struct {
	source Source
	cache  *Cache
	logger *slog.Logger
	cfg    ServiceConfig
	now    func() time.Time
}

// NewService wires a Source with an optional Cache.
func NewService(source Source, cache *Cache, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, logger: logger, cfg: cfg, now: time.Now}
}

// Load validates filter and returns the report with row totals derived.
func (s *Service) Load(ctx context.Context, filter Filter) (Report, error) {
	filter = filter.Normalize()
	if err := filter.Validate(s.cfg.MaxRange); err != nil {
		return Report{}, err
	}
	loader := func(ctx context.Context) (Report, error) {
		report, err := s.source.FetchReport(ctx, filter)
		if err != nil {
			return Report{}, fmt.Errorf("salesreport: fetch %s: %w", filter.Key(), err)
		}
		return report, nil
	}

	var (
		report Report
		err    error
	)
	if s.cache == nil {
		report, err = loader(ctx)
	} else {
		var key string
		key, err = s.cache.BuildKey(ctx, keyReport(filter))
		if err != nil {
			return Report{}, err
		}
		report, err = s.cache.FetchReport(ctx, key, loader)
	}
	if err != nil {
		return Report{}, err
	}
	return DeriveReportTotals(report), nil
}

// Refresh runs a fetch against board: the dataset is dropped while loading,
// replaced on success and cleared on failure. Invalid filters leave the board
// untouched.
func (s *Service) Refresh(ctx context.Context, board *Board, filter Filter) error {
	start := s.now()
	if err := filter.Normalize().Validate(s.cfg.MaxRange); err != nil {
		s.observe(OutcomeInvalid, start)
		return err
	}
	board.BeginFetch()
	report, err := s.Load(ctx, filter)
	if err != nil {
		s.observe(OutcomeFailure, start)
		s.logger.Warn("sales report fetch failed", slog.String("filter", filter.Normalize().Key()), slog.Any("error", err))
		board.Fail(err)
		return err
	}
	board.Replace(report)
	s.observe(OutcomeSuccess, start)
	s.logger.Debug("sales report loaded",
		slog.String("filter", filter.Normalize().Key()),
		slog.Int("categories", report.FoodSalesByCategoryAndOrderType.Len()),
		slog.Int("order_types", len(report.RevenueByOrderType)),
	)
	return nil
}

// Invalidate drops every cached report.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) observe(outcome string, start time.Time) {
	if s.cfg.Observer == nil {
		return
	}
	s.cfg.Observer.ObserveFetch(outcome, s.now().Sub(start))
}
