package debounce_test

import (
	"testing"
	"time"

	"github.com/leonardotrapani/voicelink/internal/debounce"
	"github.com/leonardotrapani/voicelink/internal/testutil"
)

func TestActionRunsAfterDelay(t *testing.T) {
	clock := testutil.NewClock()
	a := debounce.New(100*time.Millisecond, clock.AfterFunc, nil)

	runs := 0
	a.Schedule(func() { runs++ })
	if !a.Pending() {
		t.Fatalf("Pending should be true after Schedule")
	}

	clock.Advance(99 * time.Millisecond)
	if runs != 0 {
		t.Fatalf("fired early")
	}
	clock.Advance(time.Millisecond)
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if a.Pending() {
		t.Fatalf("Pending should be false after firing")
	}
}

func TestActionRescheduleCancelsPrevious(t *testing.T) {
	clock := testutil.NewClock()
	a := debounce.New(100*time.Millisecond, clock.AfterFunc, nil)

	var got []string
	a.Schedule(func() { got = append(got, "first") })
	clock.Advance(60 * time.Millisecond)
	a.Schedule(func() { got = append(got, "second") })
	clock.Advance(60 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("reschedule should restart the wait, got %v", got)
	}
	clock.Advance(40 * time.Millisecond)

	if len(got) != 1 || got[0] != "second" {
		t.Fatalf("got %v, want [second]", got)
	}
}

func TestActionCancel(t *testing.T) {
	clock := testutil.NewClock()
	a := debounce.New(10*time.Millisecond, clock.AfterFunc, nil)

	if a.Cancel() {
		t.Fatalf("Cancel with nothing pending should report false")
	}
	runs := 0
	a.Schedule(func() { runs++ })
	if !a.Cancel() {
		t.Fatalf("Cancel should report the pending run")
	}
	clock.Advance(time.Second)
	if runs != 0 {
		t.Fatalf("cancelled action ran")
	}
}

// A timer that already fired but whose delivery is still queued must not run
// once the owner cancels it.
func TestActionStaleDeliveryDropped(t *testing.T) {
	clock := testutil.NewClock()
	var queued []func()
	post := func(f func()) { queued = append(queued, f) }
	a := debounce.New(10*time.Millisecond, clock.AfterFunc, post)

	runs := 0
	a.Schedule(func() { runs++ })
	clock.Advance(10 * time.Millisecond)
	if len(queued) != 1 {
		t.Fatalf("expected one queued delivery, got %d", len(queued))
	}

	a.Cancel()
	queued[0]()
	if runs != 0 {
		t.Fatalf("stale delivery ran")
	}
}

func TestActionScheduleAfter(t *testing.T) {
	clock := testutil.NewClock()
	a := debounce.New(time.Hour, clock.AfterFunc, nil)

	runs := 0
	a.ScheduleAfter(5*time.Millisecond, func() { runs++ })
	clock.Advance(5 * time.Millisecond)
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}
