// Package sink appends refresh cycles to an external occupancy log.
//
// Gate filters cycles (no guests, quiet hours, off-minute). Webhook posts a
// JSON row batch or Slack message with bounded exponential-backoff retries;
// Postgres bulk-copies rows with pgx. New selects one from config.
package sink
