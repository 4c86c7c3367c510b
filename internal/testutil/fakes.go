package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/leonardotrapani/voicelink/internal/engine"
)

// FakeEngine is a hand-driven engine.Engine. Start and Stop only record the
// call; tests deliver events with Emit and its helpers.
type FakeEngine struct {
	Caps engine.Capabilities

	mu         sync.Mutex
	opts       engine.Options
	listener   engine.Listener
	running    bool
	starts     int
	stops      int
	startErr   error
	configured int
}

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{Caps: engine.Capabilities{Continuous: true, InterimResults: true}}
}

func (e *FakeEngine) Capabilities() engine.Capabilities {
	return e.Caps
}

func (e *FakeEngine) Configure(opts engine.Options) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts = opts
	e.configured++
	return nil
}

func (e *FakeEngine) Start(ctx context.Context, l engine.Listener) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	if e.startErr != nil {
		err := e.startErr
		e.startErr = nil
		return err
	}
	if e.running {
		return engine.ErrAlreadyStarted
	}
	e.running = true
	e.listener = l
	return nil
}

func (e *FakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	return nil
}

// FailNextStart makes the next Start return err.
func (e *FakeEngine) FailNextStart(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startErr = err
}

// SetRunning forces the running flag, e.g. to simulate an engine that never
// reported its end.
func (e *FakeEngine) SetRunning(running bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = running
}

// Emit delivers ev to the listener of the current run.
func (e *FakeEngine) Emit(ev engine.Event) {
	e.mu.Lock()
	l := e.listener
	if ev.Kind == engine.EventEnd {
		e.running = false
	}
	e.mu.Unlock()
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if l != nil {
		l(ev)
	}
}

func (e *FakeEngine) EmitStart() { e.Emit(engine.Event{Kind: engine.EventStart}) }
func (e *FakeEngine) EmitEnd()   { e.Emit(engine.Event{Kind: engine.EventEnd}) }

func (e *FakeEngine) EmitError(kind engine.ErrorKind) {
	e.Emit(engine.Event{Kind: engine.EventError, Err: kind})
}

func (e *FakeEngine) EmitResults(at time.Time, from int, results ...engine.Result) {
	e.Emit(engine.Event{Kind: engine.EventResult, Results: results, ResultIndex: from, At: at})
}

func (e *FakeEngine) Starts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts
}

func (e *FakeEngine) Stops() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stops
}

func (e *FakeEngine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *FakeEngine) Options() engine.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// TranslateCall is one pending call on a FakeTranslator.
type TranslateCall struct {
	Text   string
	Target string
	Ctx    context.Context

	reply chan translateReply
}

type translateReply struct {
	text string
	err  error
}

// Reply makes the blocked Translate call return.
func (c *TranslateCall) Reply(text string, err error) {
	c.reply <- translateReply{text: text, err: err}
}

// FakeTranslator blocks every Translate call until the test replies to it.
type FakeTranslator struct {
	Calls chan *TranslateCall
}

func NewFakeTranslator() *FakeTranslator {
	return &FakeTranslator{Calls: make(chan *TranslateCall, 16)}
}

func (f *FakeTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	call := &TranslateCall{Text: text, Target: target, Ctx: ctx, reply: make(chan translateReply, 1)}
	f.Calls <- call
	select {
	case r := <-call.reply:
		return r.text, r.err
	case <-time.After(5 * time.Second):
		return "", errors.New("fake translator: no reply")
	}
}

// Next waits for the next call.
func (f *FakeTranslator) Next(timeout time.Duration) (*TranslateCall, bool) {
	select {
	case c := <-f.Calls:
		return c, true
	case <-time.After(timeout):
		return nil, false
	}
}

// RecordingNotifier captures notify.Notifier calls.
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages []string
	States   []bool
}

func (n *RecordingNotifier) SessionChanged(active bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.States = append(n.States, active)
}

func (n *RecordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, msg)
}

func (n *RecordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.Messages))
	copy(out, n.Messages)
	return out
}

// FakeClipboard implements clipboard writing with scripted failures.
type FakeClipboard struct {
	mu     sync.Mutex
	Err    error
	Writes []string
}

func (c *FakeClipboard) Write(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Writes = append(c.Writes, text)
	return nil
}

func (c *FakeClipboard) Written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.Writes))
	copy(out, c.Writes)
	return out
}
