package api

import (
	"time"

	"github.com/loungewatch/loungewatch/internal/aggregate"
	"github.com/loungewatch/loungewatch/internal/security"
	"github.com/loungewatch/loungewatch/pkg/types"
)

// timestampLayout is the display-zone wall clock format of StatusResponse.Timestamp.
const timestampLayout = "2006-01-02 15:04:05"

// StatusResponse is the payload for GET /api/status and websocket pushes.
type StatusResponse struct {
	Timestamp  *string        `json:"timestamp"`   // display zone wall clock, null if never populated
	CapturedAt *string        `json:"captured_at"` // RFC3339 with zone offset
	Top        *types.Record  `json:"top"`
	Ranking    []types.Record `json:"ranking"`
	Status     string         `json:"status"`
}

// BuildStatus maps a snapshot to its JSON representation.
func BuildStatus(snap *types.Snapshot) StatusResponse {
	if snap == nil {
		snap = types.Empty()
	}
	resp := StatusResponse{
		Top:     snap.Top,
		Ranking: snap.Records,
		Status:  snap.Status(),
	}
	if resp.Ranking == nil {
		resp.Ranking = []types.Record{}
	}
	if snap.Populated() {
		ts := snap.CapturedAt.Format(timestampLayout)
		at := snap.CapturedAt.Format(time.RFC3339)
		resp.Timestamp = &ts
		resp.CapturedAt = &at
	}
	return resp
}

// DebugResponse is the payload for GET /api/debug.
type DebugResponse struct {
	Count   int            `json:"count"`
	Data    []types.Record `json:"data"`
	Sources []SourceDebug  `json:"sources"`
}

// SourceDebug is one adapter's live report with its lifetime fetch counters.
type SourceDebug struct {
	aggregate.Report
	FetchSuccessTotal float64              `json:"fetch_success_total"`
	FetchErrorTotal   float64              `json:"fetch_error_total"`
	Cert              *security.CertStatus `json:"cert,omitempty"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
