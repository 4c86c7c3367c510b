package latency

import (
	"testing"
	"time"
)

func TestTrackerBaseline(t *testing.T) {
	var tr Tracker
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if _, ok := tr.Observe(base); ok {
		t.Fatalf("first observation should be unknown")
	}
	if tr.String() != "unknown" {
		t.Fatalf("String = %q, want unknown", tr.String())
	}

	ms, ok := tr.Observe(base.Add(120*time.Millisecond + 600*time.Microsecond))
	if !ok {
		t.Fatalf("second observation should be known")
	}
	if ms != 121 {
		t.Fatalf("latency = %d, want 121 (rounded)", ms)
	}
	if tr.String() != "121ms" {
		t.Fatalf("String = %q", tr.String())
	}
}

func TestTrackerOutOfOrder(t *testing.T) {
	var tr Tracker
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr.Observe(base)

	ms, ok := tr.Observe(base.Add(-time.Second))
	if !ok || ms != 0 {
		t.Fatalf("out of order = %d,%v, want 0,true", ms, ok)
	}

	ms, _ = tr.Observe(base.Add(50 * time.Millisecond))
	if ms != 50 {
		t.Fatalf("baseline moved back: latency = %d, want 50", ms)
	}
}

func TestTrackerReset(t *testing.T) {
	var tr Tracker
	base := time.Now()
	tr.Observe(base)
	tr.Observe(base.Add(time.Millisecond))

	tr.Reset()
	if _, ok := tr.Current(); ok {
		t.Fatalf("Reset should make latency unknown")
	}
	if _, ok := tr.Observe(base.Add(time.Second)); ok {
		t.Fatalf("first observation after reset should be unknown")
	}
}
