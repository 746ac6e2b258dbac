package sink

import (
	"time"

	"github.com/loungewatch/loungewatch/pkg/types"
)

// Reasons a cycle is not logged.
const (
	ReasonNoGuests   = "no guests"
	ReasonQuietHours = "quiet hours"
	ReasonOffMinute  = "off minute"
)

// Gate decides whether a refresh cycle is worth logging.
type Gate struct {
	// QuietStart and QuietEnd are inclusive display-zone hours during which
	// nothing is logged. A start after the end wraps past midnight.
	QuietStart int
	QuietEnd   int

	// MinuteMultiple restricts logging to minutes divisible by it.
	MinuteMultiple int
}

// Allow reports whether records captured at t should be logged, and if not,
// why. t must already be in the display zone.
func (g Gate) Allow(t time.Time, records []types.Record) (bool, string) {
	if types.TotalGuests(records) == 0 {
		return false, ReasonNoGuests
	}
	if g.quiet(t.Hour()) {
		return false, ReasonQuietHours
	}
	if g.MinuteMultiple > 1 && t.Minute()%g.MinuteMultiple != 0 {
		return false, ReasonOffMinute
	}
	return true, ""
}

func (g Gate) quiet(hour int) bool {
	if g.QuietStart <= g.QuietEnd {
		return hour >= g.QuietStart && hour <= g.QuietEnd
	}
	return hour >= g.QuietStart || hour <= g.QuietEnd
}
