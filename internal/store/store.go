package store

import (
	"sync"
	"time"

	"github.com/loungewatch/loungewatch/pkg/types"
)

// Cache holds the most recent snapshot. Writes replace it wholesale, so a
// reader never sees a partially updated snapshot. It performs no I/O.
type Cache struct {
	mu   sync.RWMutex
	snap *types.Snapshot
}

// New returns a Cache seeded with an empty, never-populated snapshot.
func New() *Cache {
	return &Cache{snap: types.Empty()}
}

// Read returns the current snapshot. Callers must not modify it.
func (c *Cache) Read() *types.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Write publishes snap. Callers must not modify snap after calling Write.
// A nil snap is ignored.
func (c *Cache) Write(snap *types.Snapshot) {
	if snap == nil {
		return
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// Age returns how old the cached snapshot is at now. ok is false when the
// cache was never populated.
func (c *Cache) Age(now time.Time) (age time.Duration, ok bool) {
	snap := c.Read()
	if !snap.Populated() {
		return 0, false
	}
	return now.Sub(snap.CapturedAt), true
}
