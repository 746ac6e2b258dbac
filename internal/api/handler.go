package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/loungewatch/loungewatch/internal/aggregate"
	"github.com/loungewatch/loungewatch/internal/security"
	"github.com/loungewatch/loungewatch/internal/telemetry"
	"github.com/loungewatch/loungewatch/pkg/types"
)

// Snapshots is the read side the handler serves from.
type Snapshots interface {
	GetSnapshot(ctx context.Context) *types.Snapshot
	Diagnose(ctx context.Context) []aggregate.Report
}

// CertFunc inspects the certificate of a feed endpoint.
type CertFunc func(ctx context.Context, endpoint string) *security.CertStatus

// Handler serves /api/status, /api/debug and /metrics.
type Handler struct {
	svc     Snapshots
	metrics *telemetry.Metrics
	certs   CertFunc
	mux     *http.ServeMux
}

// New creates a Handler and registers all routes. metrics and certs may be nil.
func New(svc Snapshots, metrics *telemetry.Metrics, certs CertFunc) http.Handler {
	h := &Handler{svc: svc, metrics: metrics, certs: certs, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/status", h.status)
	h.mux.HandleFunc("/api/debug", h.debug)
	h.mux.Handle("/metrics", getOnly(metrics.Handler()))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// status returns GET /api/status: the ranked snapshot, refreshed first if
// the cache is stale.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildStatus(h.svc.GetSnapshot(r.Context())))
}

// debug returns GET /api/debug: a live fetch of every adapter. With
// ?certs=1 each HTTPS endpoint's certificate is inspected too.
func (h *Handler) debug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildDebug(r.Context(), h.svc, h.metrics, h.certsFor(r)))
}

func (h *Handler) certsFor(r *http.Request) CertFunc {
	switch r.URL.Query().Get("certs") {
	case "1", "true":
		return h.certs
	default:
		return nil
	}
}

// BuildDebug runs the live diagnostics used by /api/debug and the debug
// command.
func BuildDebug(ctx context.Context, svc Snapshots, metrics *telemetry.Metrics, certs CertFunc) DebugResponse {
	reports := svc.Diagnose(ctx)
	resp := DebugResponse{
		Data:    []types.Record{},
		Sources: make([]SourceDebug, 0, len(reports)),
	}
	for _, rep := range reports {
		resp.Data = append(resp.Data, rep.Records...)
		sd := SourceDebug{
			Report: rep,
			FetchSuccessTotal: metrics.Value(telemetry.MetricAdapterFetches,
				map[string]string{"source": rep.SourceID, "outcome": "success"}),
			FetchErrorTotal: metrics.Value(telemetry.MetricAdapterFetches,
				map[string]string{"source": rep.SourceID, "outcome": "error"}),
		}
		if certs != nil {
			sd.Cert = certs(ctx, rep.Endpoint)
		}
		resp.Sources = append(resp.Sources, sd)
	}
	resp.Count = len(resp.Data)
	return resp
}

// --- helpers ----------------------------------------------------------------

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
