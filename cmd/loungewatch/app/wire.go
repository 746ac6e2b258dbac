package app

import (
	"context"
	"fmt"

	"github.com/loungewatch/loungewatch/internal/adapter"
	"github.com/loungewatch/loungewatch/internal/aggregate"
	"github.com/loungewatch/loungewatch/internal/api"
	"github.com/loungewatch/loungewatch/internal/config"
	"github.com/loungewatch/loungewatch/internal/security"
	"github.com/loungewatch/loungewatch/internal/service"
	"github.com/loungewatch/loungewatch/internal/store"
	"github.com/loungewatch/loungewatch/internal/telemetry"
)

// components is the process object graph built from one config.
type components struct {
	cfg     *config.Config
	metrics *telemetry.Metrics
	agg     *aggregate.Aggregator
	cache   *store.Cache
	svc     *service.Service
}

func build(cfg *config.Config) (*components, error) {
	m := cfg.Monitor
	metrics := telemetry.New()

	adapters, err := adapter.NewAll(m.Sources, adapter.Options{
		UserAgent: m.UserAgent,
		Timeout:   m.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build adapters: %w", err)
	}

	agg := aggregate.New(adapters, m.Location(),
		aggregate.WithFetchTimeout(m.FetchTimeout),
		aggregate.WithMetrics(metrics),
	)
	cache := store.New()
	svc := service.New(agg, cache, m.StalenessThreshold, service.WithMetrics(metrics))

	return &components{cfg: cfg, metrics: metrics, agg: agg, cache: cache, svc: svc}, nil
}

// certFunc checks endpoints with each source's own TLS settings.
func (c *components) certFunc() api.CertFunc {
	insecure := make(map[string]bool, len(c.cfg.Monitor.Sources))
	for _, src := range c.cfg.Monitor.Sources {
		insecure[src.Endpoint] = src.TLS.InsecureSkipVerify
	}
	return func(ctx context.Context, endpoint string) *security.CertStatus {
		return security.Check(ctx, endpoint, insecure[endpoint])
	}
}
