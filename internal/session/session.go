// Package session drives one speech engine as a continuous, user-toggled
// transcription session.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leonardotrapani/voicelink/internal/clipboard"
	"github.com/leonardotrapani/voicelink/internal/debounce"
	"github.com/leonardotrapani/voicelink/internal/engine"
	"github.com/leonardotrapani/voicelink/internal/language"
	"github.com/leonardotrapani/voicelink/internal/metrics"
	"github.com/leonardotrapani/voicelink/internal/notify"
	"github.com/leonardotrapani/voicelink/internal/transcript"
	"github.com/leonardotrapani/voicelink/internal/translation"
)

type State string

const (
	Idle      State = "idle"
	Starting  State = "starting"
	Listening State = "listening"
	Stopping  State = "stopping"
	Error     State = "error"
)

// ToggleAction is what a Toggle call did.
type ToggleAction string

const (
	Started ToggleAction = "start"
	Stopped ToggleAction = "stop"
	Ignored ToggleAction = "ignored"
)

var (
	ErrClosed        = errors.New("session closed")
	ErrNothingToCopy = errors.New("transcript is empty")
)

const copyFailedMessage = "copy failed"

// Config holds the session timings and engine options.
type Config struct {
	Engine engine.Options

	RestartDelay        time.Duration
	ToggleStopCooldown  time.Duration
	ToggleStartCooldown time.Duration
	NoticeDuration      time.Duration
	CopiedDuration      time.Duration
	SeenLimit           int

	Target              string
	TranslationDebounce time.Duration
	TranslationTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Engine:              engine.Options{Continuous: true, InterimResults: true, Language: "en-US"},
		RestartDelay:        300 * time.Millisecond,
		ToggleStopCooldown:  300 * time.Millisecond,
		ToggleStartCooldown: 500 * time.Millisecond,
		NoticeDuration:      3 * time.Second,
		CopiedDuration:      2 * time.Second,
		SeenLimit:           transcript.DefaultSeenLimit,
		TranslationDebounce: translation.DefaultDebounce,
		TranslationTimeout:  translation.DefaultTimeout,
	}
}

// Deps are the capabilities a Controller consumes besides the engine.
// Zero values fall back to the system clock, no translation, a log
// notifier, the system clipboard and a private metrics registry.
type Deps struct {
	Translator translation.Translator
	Notifier   notify.Notifier
	Clipboard  clipboard.Writer
	Metrics    *metrics.Metrics
	After      debounce.AfterFunc
	Now        func() time.Time
}

// Status is the readout of a session.
type Status struct {
	State        State
	Active       bool
	LatencyMS    int64
	LatencyKnown bool
	Target       string
	Notice       string
	NoticeLeft   time.Duration
	Segments     int
	Restarts     int
	Restarting   bool
	Copied       bool
	Reduced      bool
}

// Latency renders the latency as "121ms" or "unknown".
func (s Status) Latency() string {
	if !s.LatencyKnown {
		return "unknown"
	}
	return fmt.Sprintf("%dms", s.LatencyMS)
}

// String is the single-line form written on the control socket.
func (s Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "STATUS state=%s active=%t latency=%s target=%s segments=%d restarts=%d",
		s.State, s.Active, s.Latency(), language.Label(s.Target), s.Segments, s.Restarts)
	if s.Restarting {
		b.WriteString(" restarting=true")
	}
	if s.Copied {
		b.WriteString(" copied=true")
	}
	if s.Reduced {
		b.WriteString(" reduced=true")
	}
	if s.Notice != "" {
		fmt.Fprintf(&b, " notice=%q", s.Notice)
		if s.NoticeLeft > 0 {
			fmt.Fprintf(&b, " notice_left=%s", s.NoticeLeft.Round(time.Second))
		}
	}
	return b.String()
}

// Snapshot is the text side of a session.
type Snapshot struct {
	Transcript  string
	Interim     string
	Translation string
	Target      string
}
