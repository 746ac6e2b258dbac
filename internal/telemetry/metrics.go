package telemetry

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Refresh triggers.
const (
	TriggerScheduled = "scheduled"
	TriggerOnDemand  = "on_demand"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metric names.
const (
	MetricAdapterFetches  = "loungewatch_adapter_fetch_total"
	MetricAdapterRecords  = "loungewatch_adapter_records"
	MetricRefreshDuration = "loungewatch_refresh_duration_seconds"
	MetricRefreshes       = "loungewatch_refresh_total"
	MetricSinkWrites      = "loungewatch_sink_writes_total"
)

// Metrics owns a private registry with the process's counters. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	fetches         *prometheus.CounterVec
	records         *prometheus.GaugeVec
	refreshDuration prometheus.Histogram
	refreshes       *prometheus.CounterVec
	sinkWrites      *prometheus.CounterVec
}

// New registers every metric on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricAdapterFetches,
			Help: "Feed fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricAdapterRecords,
			Help: "Venue records returned by the last successful fetch of each source.",
		}, []string{"source"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRefreshDuration,
			Help:    "Wall time of a full refresh across all sources.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRefreshes,
			Help: "Refreshes by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		sinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricSinkWrites,
			Help: "Log sink writes by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.fetches, m.records, m.refreshDuration, m.refreshes, m.sinkWrites)
	return m
}

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}
	return outcomeSuccess
}

// RecordFetch counts one adapter fetch.
func (m *Metrics) RecordFetch(source string, records int, err error) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source, outcome(err)).Inc()
	if err == nil {
		m.records.WithLabelValues(source).Set(float64(records))
	}
}

// RecordRefresh counts one refresh and observes its duration.
func (m *Metrics) RecordRefresh(trigger string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(trigger, outcome(err)).Inc()
	m.refreshDuration.Observe(d.Seconds())
}

// RecordSinkWrite counts one log sink write.
func (m *Metrics) RecordSinkWrite(err error) {
	if m == nil {
		return
	}
	m.sinkWrites.WithLabelValues(outcome(err)).Inc()
}

// Gather returns the current metric families.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	if m == nil {
		return nil, nil
	}
	return m.registry.Gather()
}

// WriteText encodes all metrics in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	mfs, err := m.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Handler serves WriteText over HTTP.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		if err := m.WriteText(w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// Value sums the samples of a gathered family whose labels include every
// pair in match. Returns 0 if the family is absent.
func (m *Metrics) Value(name string, match map[string]string) float64 {
	mfs, err := m.Gather()
	if err != nil {
		return 0
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return sumFamily(mf, match)
		}
	}
	return 0
}

// sumFamily adds up the counter, gauge, or untyped values in mf whose
// labels match. Returns 0 if mf is nil.
func sumFamily(mf *dto.MetricFamily, match map[string]string) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		if !labelsMatch(m.GetLabel(), match) {
			continue
		}
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		case m.Histogram != nil:
			total += float64(m.Histogram.GetSampleCount())
		}
	}
	return total
}

func labelsMatch(pairs []*dto.LabelPair, match map[string]string) bool {
	for k, want := range match {
		found := false
		for _, p := range pairs {
			if p.GetName() == k && p.GetValue() == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
