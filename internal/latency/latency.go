package latency

import (
	"fmt"
	"time"
)

// Tracker derives the gap between consecutive result events.
type Tracker struct {
	last    time.Time
	hasLast bool
	ms      int64
	known   bool
}

// Observe records a result arrival. The first arrival of a session has no
// baseline and leaves the latency unknown. A timestamp older than the
// previous one yields zero and does not move the baseline back.
func (t *Tracker) Observe(at time.Time) (int64, bool) {
	if !t.hasLast {
		t.last = at
		t.hasLast = true
		return 0, false
	}

	delta := at.Sub(t.last)
	if delta < 0 {
		delta = 0
	} else {
		t.last = at
	}
	t.ms = delta.Round(time.Millisecond).Milliseconds()
	t.known = true
	return t.ms, true
}

// Current returns the last latency in milliseconds and whether it is known.
func (t *Tracker) Current() (int64, bool) {
	return t.ms, t.known
}

// String renders the readout form, e.g. "120ms" or "unknown".
func (t *Tracker) String() string {
	if !t.known {
		return "unknown"
	}
	return fmt.Sprintf("%dms", t.ms)
}

// Reset returns the tracker to unknown.
func (t *Tracker) Reset() {
	*t = Tracker{}
}
