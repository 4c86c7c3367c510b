package engine

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAlreadyStarted is returned by Start while a previous run is still live.
	ErrAlreadyStarted = errors.New("speech engine already started")
	// ErrUnsupported means the runtime cannot host the engine at all.
	ErrUnsupported = errors.New("speech engine unsupported")
)

// EventKind identifies a lifecycle or result event emitted by an engine run.
type EventKind string

const (
	EventStart  EventKind = "start"
	EventResult EventKind = "result"
	EventError  EventKind = "error"
	EventEnd    EventKind = "end"
)

// Result is one recognised fragment of a run.
type Result struct {
	Text    string
	IsFinal bool
}

// Event is delivered to the Listener of the run that produced it.
// For EventResult, Results holds the run's result list and ResultIndex is
// the first entry that changed since the previous event.
type Event struct {
	Kind        EventKind
	Results     []Result
	ResultIndex int
	Err         ErrorKind
	Detail      string
	At          time.Time
}

// Listener receives the events of a run. It may be called from any goroutine
// and must not block for long.
type Listener func(Event)

// Options configure recognition behaviour.
type Options struct {
	Continuous     bool
	InterimResults bool
	Language       string
}

// Capabilities advertise what the engine runtime can do.
type Capabilities struct {
	Continuous     bool
	InterimResults bool
}

// Clamp turns off options the runtime does not advertise.
func (o Options) Clamp(c Capabilities) Options {
	if !c.Continuous {
		o.Continuous = false
	}
	if !c.InterimResults {
		o.InterimResults = false
	}
	return o
}

// Reduced reports whether the clamped options lost any feature.
func (c Capabilities) Reduced() bool {
	return !c.Continuous || !c.InterimResults
}

// Engine is a streaming speech recogniser. Start begins a run whose events
// go to l; every run that started ends with exactly one EventEnd. Start and
// Stop must return promptly and never call l synchronously.
type Engine interface {
	Capabilities() Capabilities
	Configure(opts Options) error
	Start(ctx context.Context, l Listener) error
	Stop() error
}
