package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loungewatch/loungewatch/internal/adapter"
	"github.com/loungewatch/loungewatch/internal/compute"
	"github.com/loungewatch/loungewatch/internal/telemetry"
	"github.com/loungewatch/loungewatch/pkg/types"
)

const defaultFetchTimeout = 10 * time.Second

// ErrAllSourcesFailed is returned by Refresh when every adapter failed. The
// accompanying snapshot is empty and should not replace a cached one.
var ErrAllSourcesFailed = errors.New("aggregate: all sources failed")

// Aggregator fans a refresh out to every adapter and merges the results into
// one ranked snapshot.
type Aggregator struct {
	adapters []adapter.Adapter
	loc      *time.Location
	timeout  time.Duration
	now      func() time.Time
	health   *compute.HealthTracker
	metrics  *telemetry.Metrics
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithFetchTimeout bounds each adapter fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithHealth feeds every fetch outcome into h.
func WithHealth(h *compute.HealthTracker) Option {
	return func(a *Aggregator) { a.health = h }
}

// WithMetrics counts every fetch outcome in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// New returns an Aggregator over adapters, in registration order. Snapshot
// times are expressed in loc.
func New(adapters []adapter.Adapter, loc *time.Location, opts ...Option) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	a := &Aggregator{
		adapters: adapters,
		loc:      loc,
		timeout:  defaultFetchTimeout,
		now:      time.Now,
		health:   compute.NewHealthTracker(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Adapters returns the registered adapters.
func (a *Aggregator) Adapters() []adapter.Adapter { return a.adapters }

// Health returns the tracker fed by this aggregator.
func (a *Aggregator) Health() *compute.HealthTracker { return a.health }

// Location returns the display zone of produced snapshots.
func (a *Aggregator) Location() *time.Location { return a.loc }

// Refresh fetches every adapter concurrently, then tags, ranks and stamps the
// merged records. It waits for all adapters; a slow one costs at most the
// fetch timeout.
//
// Adapters that answered with no venues yield a valid empty snapshot. When
// every adapter failed, the empty snapshot is returned with
// ErrAllSourcesFailed.
func (a *Aggregator) Refresh(ctx context.Context) (*types.Snapshot, error) {
	results := a.fetchAll(ctx)

	var (
		records []types.Record
		failed  int
	)
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		records = append(records, res.Records...)
	}

	compute.Tag(records)
	compute.Rank(records)
	snap := types.NewSnapshot(records, a.now().In(a.loc))

	if len(a.adapters) > 0 && failed == len(a.adapters) {
		return snap, ErrAllSourcesFailed
	}
	if failed > 0 {
		slog.Info("aggregate: partial refresh",
			"failed", failed, "sources", len(a.adapters), "records", len(records))
	}
	return snap, nil
}

// fetchAll runs every adapter under its own timeout and returns results in
// registration order.
func (a *Aggregator) fetchAll(ctx context.Context) []*adapter.Result {
	results := make([]*adapter.Result, len(a.adapters))
	var g errgroup.Group
	for i, ad := range a.adapters {
		g.Go(func() error {
			res := a.fetchOne(ctx, ad)
			a.health.Observe(res.SourceID, len(res.Records), res.Err, a.now())
			a.metrics.RecordFetch(res.SourceID, len(res.Records), res.Err)
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Aggregator) fetchOne(ctx context.Context, ad adapter.Adapter) (res *adapter.Result) {
	fctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("aggregate: adapter panicked", "source", ad.ID(), "panic", r)
			res = failedResult(ad, fmt.Errorf("adapter panic: %v", r), a.now())
		}
	}()

	res = ad.Fetch(fctx)
	if res == nil {
		return failedResult(ad, errors.New("adapter returned no result"), a.now())
	}
	if res.Err != nil {
		res.Records = []types.Record{}
	}
	return res
}

func failedResult(ad adapter.Adapter, err error, now time.Time) *adapter.Result {
	return &adapter.Result{
		SourceID:   ad.ID(),
		SourceType: ad.Type(),
		FetchedAt:  now.UTC(),
		Records:    []types.Record{},
		Err:        err,
	}
}
