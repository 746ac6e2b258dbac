package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/loungewatch/loungewatch/internal/sink"
	"github.com/loungewatch/loungewatch/internal/telemetry"
	"github.com/loungewatch/loungewatch/pkg/types"
)

const defaultInterval = 60 * time.Second

// Refresher runs one refresh and publishes it to the cache.
type Refresher interface {
	Refresh(ctx context.Context, trigger string) (*types.Snapshot, error)
}

// Scheduler drives the background refresh loop and, after each successful
// cycle, the gated log sink.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	sink      sink.Sink
	gate      sink.Gate
	metrics   *telemetry.Metrics
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSink logs every cycle the gate allows to s. A nil s disables logging.
func WithSink(s sink.Sink, gate sink.Gate) Option {
	return func(sc *Scheduler) {
		sc.sink = s
		sc.gate = gate
	}
}

// WithMetrics counts sink writes in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(sc *Scheduler) { sc.metrics = m }
}

// New returns a Scheduler refreshing every interval.
func New(r Refresher, interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	s := &Scheduler{refresher: r, interval: interval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run refreshes once immediately and then every interval until ctx is
// cancelled. Cycles run on this goroutine, so they never overlap; ticks
// missed during a slow cycle are dropped by the ticker.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("scheduler: started", "interval", s.interval)
	s.cycle(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler: stopped")
			return
		case <-t.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	snap, err := s.refresher.Refresh(ctx, telemetry.TriggerScheduled)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("scheduler: refresh failed", "err", err)
		}
		return
	}
	slog.Info("scheduler: refreshed",
		"records", len(snap.Records), "status", snap.Status(),
		"captured_at", snap.CapturedAt.Format(time.RFC3339))
	s.log(ctx, snap)
}

func (s *Scheduler) log(ctx context.Context, snap *types.Snapshot) {
	if s.sink == nil {
		return
	}
	if ok, reason := s.gate.Allow(snap.CapturedAt, snap.Records); !ok {
		slog.Debug("scheduler: sink skipped", "reason", reason)
		return
	}
	err := s.sink.Log(ctx, snap.CapturedAt, snap.Records)
	s.metrics.RecordSinkWrite(err)
	if err != nil {
		slog.Error("scheduler: sink write failed", "err", err)
		return
	}
	slog.Info("scheduler: cycle logged", "rows", len(snap.Records))
}
