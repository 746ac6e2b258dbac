// Package compute holds the pure ordering and classification passes applied
// to every refreshed snapshot, plus per-feed health tracking.
//
// region.go: the ordered Regions table and Classify (first match wins,
// fallback "Other"). rank.go: Rank (women desc, men desc, stable) and Tag.
// health.go: HealthTracker, a rolling 20-outcome uptime window per feed with
// an injectable observation time.
package compute
