// Package aggregate merges the output of all source adapters into one ranked
// types.Snapshot.
//
// Refresh fans out one goroutine per adapter (errgroup), each bounded by the
// fetch timeout, concatenates records in adapter order, assigns regions,
// ranks them and stamps the capture time in the display zone. A panicking
// adapter is recovered into a failed result. Diagnose is the live, uncached
// per-adapter view used by debug surfaces.
package aggregate
