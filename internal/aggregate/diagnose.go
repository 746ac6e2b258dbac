package aggregate

import (
	"context"

	"github.com/loungewatch/loungewatch/internal/compute"
	"github.com/loungewatch/loungewatch/pkg/types"
)

// Report is the live outcome of one adapter, for diagnostics.
type Report struct {
	SourceID   string               `json:"source_id"`
	SourceType string               `json:"source_type"`
	Endpoint   string               `json:"endpoint"`
	Records    []types.Record       `json:"records"`
	Error      string               `json:"error,omitempty"`
	DurationMS int64                `json:"duration_ms"`
	Health     compute.SourceHealth `json:"health"`
}

// Diagnose fetches every adapter now, bypassing any cache, and reports the
// raw records and error of each. Records are neither tagged nor ranked.
func (a *Aggregator) Diagnose(ctx context.Context) []Report {
	results := a.fetchAll(ctx)
	out := make([]Report, len(results))
	for i, res := range results {
		r := Report{
			SourceID:   res.SourceID,
			SourceType: res.SourceType,
			Endpoint:   a.adapters[i].Endpoint(),
			Records:    res.Records,
			DurationMS: res.Duration.Milliseconds(),
			Health:     a.health.Get(res.SourceID),
		}
		if res.Err != nil {
			r.Error = res.Err.Error()
		}
		out[i] = r
	}
	return out
}
