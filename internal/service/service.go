package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/loungewatch/loungewatch/internal/aggregate"
	"github.com/loungewatch/loungewatch/internal/store"
	"github.com/loungewatch/loungewatch/internal/telemetry"
	"github.com/loungewatch/loungewatch/pkg/types"
)

const defaultStaleness = 90 * time.Second

// refreshKey is the single singleflight key: all refreshes share one slot.
const refreshKey = "refresh"

// Aggregator is the refresh source behind the service.
type Aggregator interface {
	Refresh(ctx context.Context) (*types.Snapshot, error)
	Diagnose(ctx context.Context) []aggregate.Report
}

// Service is the read path over the snapshot cache. It serves the cached
// snapshot while it is fresh and refreshes synchronously when it is not.
type Service struct {
	agg       Aggregator
	cache     *store.Cache
	staleness time.Duration
	now       func() time.Time
	metrics   *telemetry.Metrics
	group     singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics counts refreshes in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New returns a Service. A staleness of zero or less uses the default 90s.
func New(agg Aggregator, cache *store.Cache, staleness time.Duration, opts ...Option) *Service {
	if staleness <= 0 {
		staleness = defaultStaleness
	}
	s := &Service{
		agg:       agg,
		cache:     cache,
		staleness: staleness,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSnapshot returns the cached snapshot if it is populated and no older
// than the staleness threshold. Otherwise it refreshes, publishes and returns
// the new snapshot. If that refresh fails, or ctx ends first, the last-known
// snapshot is returned. It never returns nil.
func (s *Service) GetSnapshot(ctx context.Context) *types.Snapshot {
	snap := s.cache.Read()
	if age, ok := s.cache.Age(s.now()); ok && age <= s.staleness {
		return snap
	}

	fresh, err := s.Refresh(ctx, telemetry.TriggerOnDemand)
	if err != nil {
		return s.cache.Read()
	}
	return fresh
}

// Peek returns the cached snapshot without checking freshness.
func (s *Service) Peek() *types.Snapshot {
	return s.cache.Read()
}

// Refresh runs one refresh and publishes the result to the cache. Concurrent
// calls share a single in-flight refresh. The refresh itself is detached from
// ctx so a departing caller cannot abort it for the others; ctx only bounds
// how long this caller waits.
//
// On error the cache is left unchanged.
func (s *Service) Refresh(ctx context.Context, trigger string) (*types.Snapshot, error) {
	ch := s.group.DoChan(refreshKey, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), trigger)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*types.Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) refresh(ctx context.Context, trigger string) (*types.Snapshot, error) {
	start := time.Now()
	snap, err := s.agg.Refresh(ctx)
	s.metrics.RecordRefresh(trigger, time.Since(start), err)
	if err != nil {
		slog.Warn("service: refresh failed, keeping last snapshot",
			"trigger", trigger, "err", err)
		return nil, err
	}
	s.cache.Write(snap)
	slog.Debug("service: snapshot published",
		"trigger", trigger, "records", len(snap.Records), "status", snap.Status())
	return snap, nil
}

// Diagnose returns a live per-adapter report, bypassing the cache.
func (s *Service) Diagnose(ctx context.Context) []aggregate.Report {
	return s.agg.Diagnose(ctx)
}
