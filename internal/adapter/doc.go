// Package adapter fetches venue occupancy feeds and normalizes them into
// types.Record values.
//
// Each feed type has a parse function (oriental.go, jis.go, json.go); the
// HTTP side is shared. New(config.Source, Options) returns an Adapter whose
// Fetch never fails to the caller: network, status and parse problems are
// reported in Result.Err with no records, and logged.
package adapter
