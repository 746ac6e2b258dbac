// Package scheduler runs the periodic refresh loop: one refresh at start,
// then one per interval, each followed by the gated log sink.
package scheduler
