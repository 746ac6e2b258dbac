// Package types defines the shared in-memory shapes of occupancy data: the
// normalized per-venue Record produced by source adapters and the immutable
// ranked Snapshot published to readers.
package types
