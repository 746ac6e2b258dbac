// Package service is the freshness gate in front of the snapshot cache.
//
// GetSnapshot serves the cache while it is younger than the staleness
// threshold and otherwise refreshes synchronously. All refreshes, scheduled
// or on demand, go through Refresh, which coalesces concurrent callers with
// singleflight so at most one refresh runs at a time.
package service
