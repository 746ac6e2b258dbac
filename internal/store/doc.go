// Package store holds the single in-memory snapshot cell shared by the
// refresh loop and request handlers.
package store
