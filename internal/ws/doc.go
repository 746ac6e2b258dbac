// Package ws pushes the cached occupancy status to websocket clients at
// /ws/stream: once on connect, then every broadcast interval.
package ws
