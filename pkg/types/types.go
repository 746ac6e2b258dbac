package types

import "time"

// Snapshot status values reported to consumers.
const (
	StatusSuccess = "success"
	StatusNoData  = "no_data"
)

// Record is one venue's observed occupancy at fetch time.
type Record struct {
	Name   string `json:"name"`
	Men    int    `json:"men"`
	Women  int    `json:"women"`
	Source string `json:"source"`
	Region string `json:"region"`
}

// Total returns the combined guest count.
func (r Record) Total() int { return r.Men + r.Women }

// Snapshot is the ranked result of one refresh. It is built once by
// NewSnapshot and must not be mutated afterwards; readers share it by pointer.
type Snapshot struct {
	Records []Record
	Top     *Record
	// CapturedAt is the zero time when the snapshot was never populated.
	CapturedAt time.Time
}

// NewSnapshot wraps already-ranked records. Top points at the first record.
func NewSnapshot(ranked []Record, capturedAt time.Time) *Snapshot {
	if ranked == nil {
		ranked = []Record{}
	}
	s := &Snapshot{Records: ranked, CapturedAt: capturedAt}
	if len(ranked) > 0 {
		top := ranked[0]
		s.Top = &top
	}
	return s
}

// Empty returns the never-populated snapshot used to seed caches.
func Empty() *Snapshot {
	return NewSnapshot(nil, time.Time{})
}

// Populated reports whether the snapshot came from a completed refresh.
func (s *Snapshot) Populated() bool {
	return s != nil && !s.CapturedAt.IsZero()
}

// Status returns StatusSuccess when the snapshot holds at least one record.
func (s *Snapshot) Status() string {
	if s == nil || len(s.Records) == 0 {
		return StatusNoData
	}
	return StatusSuccess
}

// TotalGuests sums men and women across all records.
func TotalGuests(records []Record) int {
	var n int
	for _, r := range records {
		n += r.Total()
	}
	return n
}
