package translation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/leonardotrapani/voicelink/internal/debounce"
	"github.com/leonardotrapani/voicelink/internal/language"
	"github.com/leonardotrapani/voicelink/internal/metrics"
)

var (
	ErrNoTranslator    = errors.New("translation provider not configured")
	ErrUnknownLanguage = errors.New("unknown target language")
)

const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultTimeout  = 10 * time.Second
)

// Options configures a Pipeline.
type Options struct {
	Translator Translator
	// Post hands a function to the owner goroutine. Responses are applied
	// through it, so every Pipeline method must run on that goroutine.
	Post     func(func())
	After    debounce.AfterFunc
	Debounce time.Duration
	Timeout  time.Duration
	Source   string // engine language tag
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Pipeline keeps a translation of the transcript in step with its latest
// snapshot. Requests are debounced, and each one carries a generation; a
// response is applied only while its generation and target are current.
type Pipeline struct {
	tr      Translator
	post    func(func())
	wait    *debounce.Action
	timeout time.Duration
	source  string
	m       *metrics.Metrics
	now     func() time.Time

	target     string
	text       string
	translated string
	gen        uint64
	cancel     context.CancelFunc
	closed     bool
}

func New(opts Options) *Pipeline {
	if opts.Post == nil {
		opts.Post = func(f func()) { f() }
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		tr:      opts.Translator,
		post:    opts.Post,
		wait:    debounce.New(opts.Debounce, opts.After, opts.Post),
		timeout: opts.Timeout,
		source:  opts.Source,
		m:       opts.Metrics,
		now:     opts.Now,
	}
}

func (p *Pipeline) Target() string     { return p.target }
func (p *Pipeline) Translated() string { return p.translated }

// Pending reports whether a debounced request is waiting to be issued.
func (p *Pipeline) Pending() bool { return p.wait.Pending() }

// SetSource updates the source language after an engine reconfiguration.
// A target equal to the new source clears the translation; a target that
// stops matching the source is requested right away.
func (p *Pipeline) SetSource(tag string) {
	wasActive := p.active()
	p.source = tag
	switch {
	case !p.active():
		p.clear()
	case !wasActive && p.text != "":
		p.wait.Cancel()
		p.issue()
	}
}

// SetTarget switches the target language. Any in-flight request is
// invalidated. A target of none, or the source language itself, clears the
// translation; any other target is requested right away for the current
// text.
func (p *Pipeline) SetTarget(code string) error {
	code, ok := language.ParseTarget(code)
	if !ok {
		return ErrUnknownLanguage
	}
	if code != "" && p.tr == nil {
		return ErrNoTranslator
	}

	p.target = code
	p.invalidate()
	p.translated = ""
	p.wait.Cancel()

	if p.active() && p.text != "" {
		p.issue()
	}
	return nil
}

// Update records a new transcript snapshot and restarts the quiescence
// window.
func (p *Pipeline) Update(text string) {
	if text == p.text {
		return
	}
	p.text = text

	if text == "" {
		p.clear()
		return
	}
	if !p.active() {
		return
	}
	p.wait.Schedule(p.issue)
}

// Close cancels the debounce and any request in flight. Late responses are
// dropped.
func (p *Pipeline) Close() {
	p.closed = true
	p.wait.Cancel()
	p.invalidate()
}

func (p *Pipeline) active() bool {
	return p.tr != nil && p.target != "" && p.target != language.Base(p.source)
}

func (p *Pipeline) clear() {
	p.wait.Cancel()
	p.invalidate()
	p.translated = ""
}

// invalidate bumps the generation so anything in flight is stale, and aborts
// its request.
func (p *Pipeline) invalidate() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Pipeline) issue() {
	if p.closed || !p.active() || p.text == "" {
		return
	}
	p.invalidate()

	gen, text, target := p.gen, p.text, p.target
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.cancel = cancel
	started := p.now()

	go func() {
		out, err := p.tr.Translate(ctx, text, target)
		p.post(func() {
			p.m.TranslationLatency.Observe(p.now().Sub(started).Seconds())
			p.resolve(gen, target, out, err)
		})
	}()
}

func (p *Pipeline) resolve(gen uint64, target, out string, err error) {
	if p.closed || gen != p.gen || target != p.target {
		p.m.Translations.WithLabelValues("stale").Inc()
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if err != nil {
		log.Printf("Translation: request to %s failed: %v", target, err)
		p.m.Translations.WithLabelValues("failed").Inc()
		p.translated = ""
		return
	}
	p.m.Translations.WithLabelValues("applied").Inc()
	p.translated = out
}
