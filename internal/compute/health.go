package compute

import (
	"sort"
	"sync"
	"time"
)

// uptimeWindow is the number of recent fetch outcomes tracked for uptime %.
const uptimeWindow = 20

// SourceHealth summarizes recent fetch outcomes for one feed.
type SourceHealth struct {
	SourceID            string    `json:"source_id"`
	UptimePct           float64   `json:"uptime_pct"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
	LastSuccess         time.Time `json:"last_success,omitempty"`
	LastRecords         int       `json:"last_records"`
}

// HealthTracker keeps a rolling window of fetch outcomes per feed, so a feed
// reporting zero guests can be told apart from one that is unreachable.
//
// All exported methods are safe for concurrent use.
type HealthTracker struct {
	mu     sync.Mutex
	states map[string]*sourceState
}

// NewHealthTracker returns a ready-to-use HealthTracker.
func NewHealthTracker() *HealthTracker {
	return &HealthTracker{states: make(map[string]*sourceState)}
}

type sourceState struct {
	history     []bool // newest last
	consecFail  int
	lastErr     string
	lastSuccess time.Time
	lastRecords int
}

// Observe records one fetch outcome. now is passed explicitly so tests
// control the clock.
func (h *HealthTracker) Observe(sourceID string, records int, err error, now time.Time) SourceHealth {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.stateFor(sourceID)
	st.record(err == nil)
	if err != nil {
		st.consecFail++
		st.lastErr = err.Error()
	} else {
		st.consecFail = 0
		st.lastErr = ""
		st.lastSuccess = now
		st.lastRecords = records
	}
	return st.summary(sourceID)
}

// Get returns the current summary for one feed. A feed never observed
// reports 100% uptime.
func (h *HealthTracker) Get(sourceID string) SourceHealth {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.states[sourceID]
	if !ok {
		return SourceHealth{SourceID: sourceID, UptimePct: 100}
	}
	return st.summary(sourceID)
}

// All returns summaries for every observed feed, sorted by source ID.
func (h *HealthTracker) All() []SourceHealth {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]SourceHealth, 0, len(h.states))
	for id, st := range h.states {
		out = append(out, st.summary(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out
}

func (h *HealthTracker) stateFor(id string) *sourceState {
	if st, ok := h.states[id]; ok {
		return st
	}
	st := &sourceState{}
	h.states[id] = st
	return st
}

func (st *sourceState) record(success bool) {
	if len(st.history) >= uptimeWindow {
		st.history = st.history[1:]
	}
	st.history = append(st.history, success)
}

func (st *sourceState) uptimePct() float64 {
	if len(st.history) == 0 {
		return 100
	}
	var ok int
	for _, s := range st.history {
		if s {
			ok++
		}
	}
	return float64(ok) / float64(len(st.history)) * 100
}

func (st *sourceState) summary(id string) SourceHealth {
	return SourceHealth{
		SourceID:            id,
		UptimePct:           st.uptimePct(),
		ConsecutiveFailures: st.consecFail,
		LastError:           st.lastErr,
		LastSuccess:         st.lastSuccess,
		LastRecords:         st.lastRecords,
	}
}
