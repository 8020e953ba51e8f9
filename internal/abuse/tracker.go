package abuse

import "time"

const (
	// BlockThreshold is the number of cancellations inside one window that
	// suspends a customer's booking privileges.
	BlockThreshold = 3

	// ResetWindow is the rolling window after which the counter restarts.
	ResetWindow = 30 * 24 * time.Hour
)

// State is the per-customer cancellation counter snapshot.
type State struct {
	Count     int
	LastReset time.Time
}

// Record applies one customer-initiated cancellation to the counter. If the
// window has elapsed the count restarts at 1, otherwise it increments. The
// returned flag reports whether the customer crossed the block threshold.
// This is independent of the policy fee outcome: a free cancellation still
// counts.
func Record(s State, now time.Time) (State, bool) {
	if now.Sub(s.LastReset) >= ResetWindow {
		s.Count = 1
		s.LastReset = now
	} else {
		s.Count++
	}
	return s, s.Count >= BlockThreshold
}
