package debounce

import "time"

// Timer is the part of *time.Timer an Action needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run on its own goroutine after d.
type AfterFunc func(d time.Duration, f func()) Timer

// SystemAfterFunc wraps time.AfterFunc.
func SystemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Action is a cancel-and-reschedule timer slot. Every Schedule cancels the
// previous pending run. Expiry is handed to post so the callback executes on
// the owner's goroutine; an expiry that lost a race with Cancel or Schedule
// is dropped there.
//
// Action is not safe for concurrent use: Schedule, Cancel and Pending must be
// called from the same goroutine that post delivers to.
type Action struct {
	after AfterFunc
	post  func(func())
	delay time.Duration

	timer   Timer
	gen     uint64
	pending bool
}

// New returns an Action that waits delay before running. A nil after uses the
// system clock; a nil post runs the callback directly on the timer goroutine.
func New(delay time.Duration, after AfterFunc, post func(func())) *Action {
	if after == nil {
		after = SystemAfterFunc
	}
	if post == nil {
		post = func(f func()) { f() }
	}
	return &Action{after: after, post: post, delay: delay}
}

// Delay returns the configured wait.
func (a *Action) Delay() time.Duration {
	return a.delay
}

// SetDelay changes the wait used by subsequent Schedule calls.
func (a *Action) SetDelay(d time.Duration) {
	a.delay = d
}

// Schedule cancels any pending run and arranges for fn to run after the
// configured delay.
func (a *Action) Schedule(fn func()) {
	a.ScheduleAfter(a.delay, fn)
}

// ScheduleAfter is Schedule with an explicit delay.
func (a *Action) ScheduleAfter(d time.Duration, fn func()) {
	a.Cancel()
	a.gen++
	gen := a.gen
	a.pending = true
	a.timer = a.after(d, func() {
		a.post(func() {
			if gen != a.gen || !a.pending {
				return
			}
			a.pending = false
			a.timer = nil
			fn()
		})
	})
}

// Cancel drops the pending run, if any. It reports whether one was pending.
func (a *Action) Cancel() bool {
	was := a.pending
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = false
	a.gen++
	return was
}

// Pending reports whether a run is scheduled and has not fired yet.
func (a *Action) Pending() bool {
	return a.pending
}
