package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loungewatch/loungewatch/internal/aggregate"
	"github.com/loungewatch/loungewatch/internal/security"
	"github.com/loungewatch/loungewatch/internal/telemetry"
	"github.com/loungewatch/loungewatch/pkg/types"
)

var jst = time.FixedZone("JST", 9*3600)

type fakeService struct {
	snap      *types.Snapshot
	reports   []aggregate.Report
	diagnoses atomic.Int32
}

func (f *fakeService) GetSnapshot(context.Context) *types.Snapshot { return f.snap }

func (f *fakeService) Diagnose(context.Context) []aggregate.Report {
	f.diagnoses.Add(1)
	return f.reports
}

func newTestServer(t *testing.T, svc Snapshots, m *telemetry.Metrics, certs CertFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(svc, m, certs))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestStatus_Success(t *testing.T) {
	recs := []types.Record{
		{Name: "B", Men: 3, Women: 9, Source: "jis", Region: "Kansai"},
		{Name: "A", Men: 10, Women: 5, Source: "xix", Region: "Chugoku"},
	}
	svc := &fakeService{snap: types.NewSnapshot(recs, time.Date(2024, 5, 1, 22, 15, 3, 0, jst))}
	srv := newTestServer(t, svc, nil, nil)

	var body StatusResponse
	resp := getJSON(t, srv.URL+"/api/status", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, types.StatusSuccess, body.Status)
	require.NotNil(t, body.Timestamp)
	assert.Equal(t, "2024-05-01 22:15:03", *body.Timestamp)
	require.NotNil(t, body.CapturedAt)
	assert.Equal(t, "2024-05-01T22:15:03+09:00", *body.CapturedAt)
	require.NotNil(t, body.Top)
	assert.Equal(t, "B", body.Top.Name)
	assert.Equal(t, recs, body.Ranking)
}

func TestStatus_NeverPopulated(t *testing.T) {
	srv := newTestServer(t, &fakeService{snap: types.Empty()}, nil, nil)

	var raw map[string]any
	getJSON(t, srv.URL+"/api/status", &raw)

	assert.Equal(t, "no_data", raw["status"])
	assert.Nil(t, raw["timestamp"])
	assert.Nil(t, raw["top"])
	assert.Equal(t, []any{}, raw["ranking"])
}

func TestStatus_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeService{snap: types.Empty()}, nil, nil)

	for _, path := range []string{"/api/status", "/api/debug", "/metrics"} {
		resp, err := http.Post(srv.URL+path, "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}
}

func TestDebug_ReportsLiveFetch(t *testing.T) {
	m := telemetry.New()
	m.RecordFetch("jis", 1, nil)
	m.RecordFetch("xix", 0, errors.New("x"))
	svc := &fakeService{reports: []aggregate.Report{
		{SourceID: "jis", Endpoint: "https://jis.example/", Records: []types.Record{{Name: "JIS UMEDA", Men: 1}}},
		{SourceID: "xix", Endpoint: "http://xix.example/", Records: []types.Record{}, Error: "HTTP 500"},
	}}
	srv := newTestServer(t, svc, m, nil)

	var body DebugResponse
	getJSON(t, srv.URL+"/api/debug", &body)

	assert.Equal(t, int32(1), svc.diagnoses.Load())
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "JIS UMEDA", body.Data[0].Name)
	require.Len(t, body.Sources, 2)
	assert.Equal(t, 1.0, body.Sources[0].FetchSuccessTotal)
	assert.Equal(t, "HTTP 500", body.Sources[1].Error)
	assert.Equal(t, 1.0, body.Sources[1].FetchErrorTotal)
	assert.Nil(t, body.Sources[0].Cert)
}

func TestDebug_WithCerts(t *testing.T) {
	svc := &fakeService{reports: []aggregate.Report{{SourceID: "jis", Endpoint: "https://jis.example/"}}}
	certs := func(_ context.Context, endpoint string) *security.CertStatus {
		return &security.CertStatus{Endpoint: endpoint, Status: security.StatusValid, DaysLeft: 80}
	}
	srv := newTestServer(t, svc, nil, certs)

	var body DebugResponse
	getJSON(t, srv.URL+"/api/debug?certs=1", &body)

	require.NotNil(t, body.Sources[0].Cert)
	assert.Equal(t, security.StatusValid, body.Sources[0].Cert.Status)
}

func TestMetrics_Exposition(t *testing.T) {
	m := telemetry.New()
	m.RecordRefresh(telemetry.TriggerOnDemand, time.Second, nil)
	srv := newTestServer(t, &fakeService{snap: types.Empty()}, m, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "loungewatch_refresh_total")
}

func TestBuildStatus_Nil(t *testing.T) {
	resp := BuildStatus(nil)
	assert.Equal(t, types.StatusNoData, resp.Status)
	assert.NotNil(t, resp.Ranking)
}
