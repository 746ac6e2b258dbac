package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *Metrics
	m.RecordFetch("jis", 3, nil)
	m.RecordRefresh(TriggerScheduled, time.Second, nil)
	m.RecordSinkWrite(errors.New("x"))
	assert.Zero(t, m.Value(MetricAdapterFetches, nil))
}

func TestRecordFetch(t *testing.T) {
	m := New()
	m.RecordFetch("jis", 4, nil)
	m.RecordFetch("jis", 0, errors.New("timeout"))
	m.RecordFetch("xix", 1, nil)

	assert.Equal(t, 1.0, m.Value(MetricAdapterFetches, map[string]string{"source": "jis", "outcome": "success"}))
	assert.Equal(t, 1.0, m.Value(MetricAdapterFetches, map[string]string{"source": "jis", "outcome": "error"}))
	assert.Equal(t, 3.0, m.Value(MetricAdapterFetches, nil))
	// The failed fetch leaves the last successful record count in place.
	assert.Equal(t, 4.0, m.Value(MetricAdapterRecords, map[string]string{"source": "jis"}))
}

func TestRecordRefresh(t *testing.T) {
	m := New()
	m.RecordRefresh(TriggerScheduled, 200*time.Millisecond, nil)
	m.RecordRefresh(TriggerOnDemand, time.Second, errors.New("all failed"))

	assert.Equal(t, 1.0, m.Value(MetricRefreshes, map[string]string{"trigger": TriggerOnDemand, "outcome": "error"}))
	assert.Equal(t, 2.0, m.Value(MetricRefreshDuration, nil))
}

func TestHandler_TextExposition(t *testing.T) {
	m := New()
	m.RecordSinkWrite(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), `loungewatch_sink_writes_total{outcome="success"} 1`)
}

func TestSumFamily_Nil(t *testing.T) {
	assert.Zero(t, sumFamily(nil, nil))
}
