package notify

import (
	"time"

	"github.com/leonardotrapani/voicelink/internal/debounce"
)

// Notice is the user-visible message currently on the board.
type Notice struct {
	Message string
	Expires time.Time
}

// Board holds at most one auto-expiring notice. Like debounce.Action it is
// confined to its owner's goroutine.
type Board struct {
	expiry *debounce.Action
	now    func() time.Time
	out    Notifier
	notice Notice
	active bool
}

// NewBoard builds a board whose expiry timers are delivered through post.
// Every notice is also forwarded to out, which may be nil, on its own
// goroutine.
func NewBoard(after debounce.AfterFunc, now func() time.Time, post func(func()), out Notifier) *Board {
	if now == nil {
		now = time.Now
	}
	if out == nil {
		out = Nop{}
	}
	return &Board{
		expiry: debounce.New(0, after, post),
		now:    now,
		out:    out,
	}
}

// Notify replaces the current notice and restarts the expiry timer.
func (b *Board) Notify(message string, d time.Duration) {
	b.notice = Notice{Message: message, Expires: b.now().Add(d)}
	b.active = true
	b.expiry.ScheduleAfter(d, b.clear)
	go b.out.Error(message)
}

// Current returns the active notice.
func (b *Board) Current() (Notice, bool) {
	return b.notice, b.active
}

// Dismiss clears the notice before it expires.
func (b *Board) Dismiss() {
	b.expiry.Cancel()
	b.clear()
}

// Close cancels the pending expiry; nothing fires after Close.
func (b *Board) Close() {
	b.expiry.Cancel()
}

func (b *Board) clear() {
	b.notice = Notice{}
	b.active = false
}
