package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/leonardotrapani/voicelink/internal/clipboard"
	"github.com/leonardotrapani/voicelink/internal/debounce"
	"github.com/leonardotrapani/voicelink/internal/engine"
	"github.com/leonardotrapani/voicelink/internal/latency"
	"github.com/leonardotrapani/voicelink/internal/metrics"
	"github.com/leonardotrapani/voicelink/internal/notify"
	"github.com/leonardotrapani/voicelink/internal/transcript"
	"github.com/leonardotrapani/voicelink/internal/translation"
)

// Controller owns the engine and all session state. Every mutation happens
// on the goroutine running Run; engine callbacks, timers and translation
// responses are posted to it.
type Controller struct {
	eng      engine.Engine
	cfg      Config
	notifier notify.Notifier
	clip     clipboard.Writer
	m        *metrics.Metrics
	now      func() time.Time

	inbox  chan func()
	done   chan struct{}
	runCtx context.Context

	state      State
	intent     bool // user wants to be listening
	live       bool // engine run started and has not ended
	toggling   bool
	endPending bool // end arrived while a start toggle was in flight
	run        int  // id of the engine run whose events are accepted
	adopted    bool // current run found the engine busy with an earlier run
	restarts   int
	copied     bool
	reduced    bool

	restart  *debounce.Action
	cooldown *debounce.Action
	copiedFx *debounce.Action

	seen  *transcript.SeenSet
	text  transcript.Transcript
	lat   latency.Tracker
	board *notify.Board
	pipe  *translation.Pipeline
}

func New(eng engine.Engine, cfg Config, deps Deps) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = notify.Log{}
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.New(0)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	c := &Controller{
		eng:      eng,
		cfg:      cfg,
		notifier: deps.Notifier,
		clip:     deps.Clipboard,
		m:        deps.Metrics,
		now:      deps.Now,
		inbox:    make(chan func(), 64),
		done:     make(chan struct{}),
		runCtx:   context.Background(),
		state:    Idle,
		seen:     transcript.NewSeenSet(cfg.SeenLimit),
		reduced:  eng.Capabilities().Reduced(),
	}
	c.restart = debounce.New(cfg.RestartDelay, deps.After, c.post)
	c.cooldown = debounce.New(0, deps.After, c.post)
	c.copiedFx = debounce.New(cfg.CopiedDuration, deps.After, c.post)
	c.board = notify.NewBoard(deps.After, deps.Now, c.post, deps.Notifier)
	c.pipe = translation.New(translation.Options{
		Translator: deps.Translator,
		Post:       c.post,
		After:      deps.After,
		Debounce:   cfg.TranslationDebounce,
		Timeout:    cfg.TranslationTimeout,
		Source:     cfg.Engine.Language,
		Metrics:    deps.Metrics,
		Now:        deps.Now,
	})
	if cfg.Target != "" {
		if err := c.pipe.SetTarget(cfg.Target); err != nil {
			log.Printf("Session: ignoring target language %q: %v", cfg.Target, err)
		}
	}
	if c.reduced {
		log.Printf("Session: engine runs in reduced mode: %+v", eng.Capabilities())
	}
	return c
}

// Run processes posted work until ctx is cancelled, then shuts the session
// down. Posting blocks until Run is running.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	defer close(c.done)

	for {
		select {
		case f := <-c.inbox:
			f()
		case <-ctx.Done():
			c.shutdown()
			return nil
		}
	}
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) post(f func()) {
	select {
	case c.inbox <- f:
	case <-c.done:
	}
}

// call runs f on the loop and waits for it.
func (c *Controller) call(f func()) error {
	ran := make(chan struct{})
	select {
	case c.inbox <- func() { f(); close(ran) }:
	case <-c.done:
		return ErrClosed
	}
	select {
	case <-ran:
		return nil
	case <-c.done:
		select {
		case <-ran:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Toggle starts a stopped session or stops a running one. While a previous
// toggle is cooling down the call is ignored.
func (c *Controller) Toggle() (ToggleAction, error) {
	var action ToggleAction
	err := c.call(func() { action = c.toggle() })
	return action, err
}

// SetTargetLanguage selects the translation target; "" or "none" disables
// translation.
func (c *Controller) SetTargetLanguage(code string) error {
	var err error
	if cerr := c.call(func() { err = c.pipe.SetTarget(code) }); cerr != nil {
		return cerr
	}
	return err
}

// SetEngineOptions replaces the recognition options. A running engine keeps
// its options; the next start or restart uses the new ones. The language
// also becomes the translation source right away.
func (c *Controller) SetEngineOptions(opts engine.Options) error {
	return c.call(func() {
		c.cfg.Engine = opts
		c.pipe.SetSource(opts.Language)
	})
}

// Dismiss clears the current notice.
func (c *Controller) Dismiss() error {
	return c.call(c.board.Dismiss)
}

// Copy writes the transcript, including the interim fragment, to the
// clipboard. A failure is also shown as a notice.
func (c *Controller) Copy(ctx context.Context) error {
	var text string
	if err := c.call(func() { text = c.text.Full() }); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrNothingToCopy
	}

	err := c.clip.Write(ctx, text)
	if cerr := c.call(func() { c.copyDone(err) }); cerr != nil {
		return cerr
	}
	return err
}

func (c *Controller) Status() (Status, error) {
	var s Status
	err := c.call(func() { s = c.status() })
	return s, err
}

func (c *Controller) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := c.call(func() {
		s = Snapshot{
			Transcript:  c.text.Text(),
			Interim:     c.text.Interim(),
			Translation: c.pipe.Translated(),
			Target:      c.pipe.Target(),
		}
	})
	return s, err
}

func (c *Controller) status() Status {
	ms, known := c.lat.Current()
	s := Status{
		State:        c.state,
		Active:       c.intent,
		LatencyMS:    ms,
		LatencyKnown: known,
		Target:       c.pipe.Target(),
		Segments:     c.text.Len(),
		Restarts:     c.restarts,
		Restarting:   c.restart.Pending(),
		Copied:       c.copied,
		Reduced:      c.reduced,
	}
	if n, ok := c.board.Current(); ok {
		s.Notice = n.Message
		s.NoticeLeft = max(n.Expires.Sub(c.now()), 0)
	}
	return s
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	log.Printf("Session: %s -> %s", c.state, s)
	c.state = s
}

func (c *Controller) toggle() ToggleAction {
	if c.toggling {
		c.m.Toggles.WithLabelValues(string(Ignored)).Inc()
		return Ignored
	}
	c.toggling = true

	if c.intent {
		c.stop()
		c.cooldown.ScheduleAfter(c.cfg.ToggleStopCooldown, c.releaseToggle)
		c.m.Toggles.WithLabelValues(string(Stopped)).Inc()
		return Stopped
	}

	c.start()
	c.cooldown.ScheduleAfter(c.cfg.ToggleStartCooldown, c.releaseToggle)
	c.m.Toggles.WithLabelValues(string(Started)).Inc()
	return Started
}

func (c *Controller) releaseToggle() {
	c.toggling = false
	if c.endPending {
		c.endPending = false
		if c.intent && !c.live {
			c.scheduleRestart()
		}
	}
}

func (c *Controller) start() {
	c.intent = true
	c.endPending = false
	c.restart.Cancel()

	c.text.Reset()
	c.seen.Clear()
	c.lat.Reset()
	c.pipe.Update("")

	c.setState(Starting)
	go c.notifier.SessionChanged(true)
	c.launch()
}

func (c *Controller) stop() {
	c.intent = false
	c.endPending = false
	c.restart.Cancel()
	go c.notifier.SessionChanged(false)

	if !c.live {
		c.setState(Idle)
		return
	}
	c.setState(Stopping)
	if err := c.eng.Stop(); err != nil {
		log.Printf("Session: engine stop failed: %v", err)
	}
}

// launch configures and starts an engine run.
func (c *Controller) launch() {
	opts := c.cfg.Engine.Clamp(c.eng.Capabilities())
	if err := c.eng.Configure(opts); err != nil {
		c.fail(engine.KindOf(err), err)
		return
	}

	c.run++
	c.adopted = false
	err := c.eng.Start(c.runCtx, c.listener(c.run))
	switch {
	case err == nil:
		c.live = true
	case errors.Is(err, engine.ErrAlreadyStarted):
		// The earlier run keeps flushing into its own listener. Its results
		// belong to the previous session; its end is ours.
		log.Printf("Session: engine already running, treating as listening")
		c.adopted = true
		c.live = true
		c.setState(Listening)
	default:
		c.fail(engine.KindOf(err), err)
	}
}

func (c *Controller) listener(run int) engine.Listener {
	return func(ev engine.Event) {
		c.post(func() { c.handle(run, ev) })
	}
}

func (c *Controller) handle(run int, ev engine.Event) {
	if run != c.run {
		if ev.Kind != engine.EventEnd || !c.adopted {
			log.Printf("Session: dropping %s event from superseded run %d", ev.Kind, run)
			return
		}
		c.adopted = false
	}

	switch ev.Kind {
	case engine.EventStart:
		c.live = true
		if c.intent {
			c.setState(Listening)
			c.board.Dismiss()
		}

	case engine.EventResult:
		if c.state == Idle || c.state == Error {
			return
		}
		c.result(ev)

	case engine.EventError:
		c.m.EngineErrors.WithLabelValues(string(ev.Err)).Inc()
		if !ev.Err.Fatal() {
			log.Printf("Session: transient engine error %s %s", ev.Err, ev.Detail)
			return
		}
		c.fail(ev.Err, errors.New(ev.Detail))

	case engine.EventEnd:
		c.live = false
		c.ended()
	}
}

func (c *Controller) result(ev engine.Event) {
	if ms, ok := c.lat.Observe(ev.At); ok {
		c.m.ResultLatency.Observe(float64(ms) / 1000)
	}

	r := transcript.Reconcile(ev.Results, ev.ResultIndex, c.seen)
	c.m.FinalsAppended.Add(float64(len(r.Segments)))
	c.m.FinalsDuplicate.Add(float64(r.Duplicates))

	if c.text.Apply(r) {
		c.pipe.Update(c.text.Text())
	}
}

func (c *Controller) ended() {
	if !c.intent {
		if c.state != Error {
			c.setState(Idle)
		}
		return
	}
	if c.toggling {
		c.endPending = true
		return
	}
	c.scheduleRestart()
}

func (c *Controller) scheduleRestart() {
	c.restart.Schedule(func() {
		if !c.intent || c.toggling || c.live {
			return
		}
		c.restarts++
		c.m.EngineRestarts.Inc()
		log.Printf("Session: restarting engine (restart #%d)", c.restarts)
		c.seen.Reset()
		c.launch()
	})
}

// fail ends the session for a fatal error: no restart, engine stopped, a
// notice shown.
func (c *Controller) fail(kind engine.ErrorKind, err error) {
	log.Printf("Session: fatal engine error %s: %v", kind, err)
	wasActive := c.intent
	c.intent = false
	c.endPending = false
	c.restart.Cancel()

	if c.live {
		if serr := c.eng.Stop(); serr != nil {
			log.Printf("Session: engine stop failed: %v", serr)
		}
	}
	if kind == engine.ErrKindUnsupported {
		c.setState(Error)
	} else {
		c.setState(Idle)
	}
	c.board.Notify(kind.Message(), c.cfg.NoticeDuration)
	if wasActive {
		go c.notifier.SessionChanged(false)
	}
}

func (c *Controller) copyDone(err error) {
	if err != nil {
		log.Printf("Session: copy failed: %v", err)
		c.board.Notify(copyFailedMessage, c.cfg.NoticeDuration)
		return
	}
	c.copied = true
	c.copiedFx.Schedule(func() { c.copied = false })
}

func (c *Controller) shutdown() {
	c.restart.Cancel()
	c.cooldown.Cancel()
	c.copiedFx.Cancel()
	c.board.Close()
	c.pipe.Close()

	if c.live || c.intent {
		if err := c.eng.Stop(); err != nil {
			log.Printf("Session: engine stop failed: %v", err)
		}
	}
	c.intent = false
	c.setState(Idle)
	log.Printf("Session: closed")
}
