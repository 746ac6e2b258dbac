// Package api implements the HTTP surface.
//
// Endpoints:
//   - GET /api/status: ranked snapshot through the freshness gate
//   - GET /api/debug: live per-adapter fetch, records and fetch counters;
//     ?certs=1 adds TLS certificate status per endpoint
//   - GET /metrics: Prometheus text exposition
//
// Every route answers non-GET methods with 405 and a JSON error body.
package api
