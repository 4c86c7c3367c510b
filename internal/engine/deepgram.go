package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/leonardotrapani/voicelink/internal/recording"
)

const (
	DefaultDeepgramURL   = "wss://api.deepgram.com/v1/listen"
	DefaultDeepgramModel = "nova-3"

	finalizeTimeout = 3 * time.Second
)

// AudioSource produces PCM frames for one run. *recording.Recorder
// satisfies it.
type AudioSource interface {
	Start(ctx context.Context) (<-chan recording.AudioFrame, <-chan error, error)
	Stop() error
}

type DeepgramConfig struct {
	URL        string
	APIKey     string
	Model      string
	Keywords   []string
	SampleRate int
	Channels   int
}

// Deepgram streams microphone audio to Deepgram's live transcription API.
// Each Start opens a new websocket and a new audio capture.
type Deepgram struct {
	cfg       DeepgramConfig
	newSource func() AudioSource
	dialer    *websocket.Dialer

	mu   sync.Mutex
	opts Options
	run  *deepgramRun
}

// NewDeepgram creates the engine. newSource is called once per run.
func NewDeepgram(cfg DeepgramConfig, newSource func() AudioSource) *Deepgram {
	if cfg.URL == "" {
		cfg.URL = DefaultDeepgramURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultDeepgramModel
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	return &Deepgram{
		cfg:       cfg,
		newSource: newSource,
		dialer:    websocket.DefaultDialer,
		opts:      Options{Continuous: true, InterimResults: true},
	}
}

func (d *Deepgram) Capabilities() Capabilities {
	return Capabilities{Continuous: true, InterimResults: true}
}

// Configure sets the options of the next run.
func (d *Deepgram) Configure(opts Options) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts = opts.Clamp(d.Capabilities())
	return nil
}

func (d *Deepgram) Start(ctx context.Context, l Listener) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.run != nil {
		return ErrAlreadyStarted
	}
	if d.cfg.APIKey == "" {
		return NewError(ErrServiceNotAllowed, errors.New("deepgram API key required"))
	}
	if d.newSource == nil {
		return ErrUnsupported
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &deepgramRun{
		d:        d,
		opts:     d.opts,
		listener: l,
		source:   d.newSource(),
		ctx:      runCtx,
		cancel:   cancel,
		stopCh:   make(chan struct{}),
	}
	d.run = r
	go r.loop()
	return nil
}

// Stop asks the current run to flush and end. The end event follows
// asynchronously.
func (d *Deepgram) Stop() error {
	d.mu.Lock()
	r := d.run
	d.mu.Unlock()
	if r != nil {
		r.stop()
	}
	return nil
}

func (d *Deepgram) finished(r *deepgramRun) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.run == r {
		d.run = nil
	}
}

// buildURL constructs the websocket URL with query parameters
func (d *Deepgram) buildURL(opts Options) (string, error) {
	u, err := url.Parse(d.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse deepgram url: %w", err)
	}

	q := u.Query()
	q.Set("model", d.cfg.Model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(d.cfg.SampleRate))
	q.Set("channels", strconv.Itoa(d.cfg.Channels))
	q.Set("interim_results", strconv.FormatBool(opts.InterimResults))
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")

	if lang := normalizeDeepgramLanguage(opts.Language); lang != "" {
		q.Set("language", lang)
	}
	if len(d.cfg.Keywords) > 0 {
		q.Set("keywords", strings.Join(d.cfg.Keywords, ","))
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func normalizeDeepgramLanguage(code string) string {
	if code == "" {
		return ""
	}
	if strings.EqualFold(code, "en") || strings.EqualFold(code, "en-us") || strings.EqualFold(code, "en_us") {
		return "en-US"
	}
	return code
}

// Deepgram websocket messages (incoming)
type deepgramResponse struct {
	Type        string            `json:"type"`
	Channel     *deepgramChannel  `json:"channel,omitempty"`
	Metadata    *deepgramMetadata `json:"metadata,omitempty"`
	IsFinal     bool              `json:"is_final,omitempty"`
	SpeechFinal bool              `json:"speech_final,omitempty"`
	Description string            `json:"description,omitempty"`
	Message     string            `json:"message,omitempty"`
}

type deepgramChannel struct {
	Alternatives []deepgramAlternative `json:"alternatives,omitempty"`
}

type deepgramAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type deepgramMetadata struct {
	RequestID string `json:"request_id"`
}

// deepgramControl is an outgoing control message, e.g. CloseStream.
type deepgramControl struct {
	Type string `json:"type"`
}

type deepgramRun struct {
	d        *Deepgram
	opts     Options
	listener Listener
	source   AudioSource

	ctx      context.Context
	cancel   context.CancelFunc
	stopCh   chan struct{}
	stopOnce sync.Once

	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (r *deepgramRun) emit(ev Event) {
	ev.At = time.Now()
	r.listener(ev)
}

func (r *deepgramRun) emitError(kind ErrorKind, err error) {
	log.Printf("deepgram: %s: %v", kind, err)
	r.emit(Event{Kind: EventError, Err: kind, Detail: err.Error()})
}

// stop ends audio capture; the writer then sends CloseStream so pending
// finals are flushed before the socket closes.
func (r *deepgramRun) stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		if err := r.source.Stop(); err != nil {
			log.Printf("deepgram: stop audio source: %v", err)
		}
		time.AfterFunc(finalizeTimeout, r.cancel)
	})
}

func (r *deepgramRun) loop() {
	defer func() {
		r.cancel()
		r.d.finished(r)
		r.emit(Event{Kind: EventEnd})
	}()

	if err := r.dial(); err != nil {
		var e *Error
		errors.As(err, &e)
		r.emitError(e.Kind, e.Err)
		return
	}
	defer r.conn.Close()

	select {
	case <-r.stopCh:
		return
	default:
	}

	frames, captureErrs, err := r.source.Start(r.ctx)
	if err != nil {
		r.emitError(captureKind(err), err)
		return
	}

	log.Printf("deepgram: connected, model=%s, language=%s", r.d.cfg.Model, r.opts.Language)
	r.emit(Event{Kind: EventStart})

	// Close the socket on cancellation so the reader unblocks.
	go func() {
		<-r.ctx.Done()
		r.conn.Close()
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		r.writeLoop(frames, captureErrs)
	}()

	r.readLoop()
	r.cancel()
	r.source.Stop()
	<-writerDone
}

func (r *deepgramRun) dial() error {
	wsURL, err := r.d.buildURL(r.opts)
	if err != nil {
		return NewError(ErrNetwork, err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+r.d.cfg.APIKey)

	conn, resp, err := r.d.dialer.DialContext(r.ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			log.Printf("deepgram: dial failed with status %d", resp.StatusCode)
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return NewError(ErrServiceNotAllowed, fmt.Errorf("websocket dial: %s", resp.Status))
			}
		}
		return NewError(ErrNetwork, fmt.Errorf("websocket dial: %w", err))
	}
	r.conn = conn
	return nil
}

func captureKind(err error) ErrorKind {
	switch {
	case errors.Is(err, recording.ErrPermission):
		return ErrPermissionDenied
	default:
		return ErrDeviceUnavailable
	}
}

func (r *deepgramRun) write(messageType int, data []byte) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.conn.WriteMessage(messageType, data)
}

func (r *deepgramRun) closeStream() {
	msg, _ := json.Marshal(deepgramControl{Type: "CloseStream"})
	if err := r.write(websocket.TextMessage, msg); err != nil {
		log.Printf("deepgram: finalize write error: %v", err)
		r.cancel()
		return
	}
	log.Printf("deepgram: sent CloseStream, waiting for final transcript")
}

// writeLoop sends raw binary audio until capture ends.
func (r *deepgramRun) writeLoop(frames <-chan recording.AudioFrame, captureErrs <-chan error) {
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				select {
				case err := <-captureErrs:
					if err != nil {
						r.emitError(captureKind(err), err)
						r.cancel()
						return
					}
				default:
				}
				r.closeStream()
				return
			}
			if err := r.write(websocket.BinaryMessage, f.Data); err != nil {
				if r.ctx.Err() == nil {
					log.Printf("deepgram: write error: %v", err)
				}
				return
			}

		case err, ok := <-captureErrs:
			if ok && err != nil {
				r.emitError(captureKind(err), err)
				r.cancel()
				return
			}
			captureErrs = nil

		case <-r.ctx.Done():
			return
		}
	}
}

func (r *deepgramRun) readLoop() {
	for {
		_, message, err := r.conn.ReadMessage()
		if err != nil {
			stopping := false
			select {
			case <-r.stopCh:
				stopping = true
			default:
			}
			if r.ctx.Err() == nil && !stopping && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				r.emitError(ErrNetwork, fmt.Errorf("websocket read: %w", err))
			}
			return
		}

		var resp deepgramResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			log.Printf("deepgram: parse error: %v", err)
			continue
		}

		switch resp.Type {
		case "Metadata":
			if resp.Metadata != nil {
				log.Printf("deepgram: session started, request_id=%s", resp.Metadata.RequestID)
			}

		case "Results":
			if r.result(resp) {
				return
			}

		case "Error":
			r.emitError(ErrNetwork, fmt.Errorf("deepgram: %s %s", resp.Message, resp.Description))

		case "UtteranceEnd", "SpeechStarted":

		default:
			log.Printf("deepgram: unknown message type: %s", resp.Type)
		}
	}
}

// result emits one Results message as a single-entry batch and reports
// whether the run should end (single-utterance mode after a final). Each
// message replaces the previous interim, so nothing older needs resending.
func (r *deepgramRun) result(resp deepgramResponse) bool {
	if resp.Channel == nil || len(resp.Channel.Alternatives) == 0 {
		return false
	}
	text := resp.Channel.Alternatives[0].Transcript
	isFinal := resp.IsFinal || resp.SpeechFinal
	if text == "" {
		return false
	}
	if !isFinal && !r.opts.InterimResults {
		return false
	}

	r.emit(Event{Kind: EventResult, Results: []Result{{Text: text, IsFinal: isFinal}}})

	if isFinal && !r.opts.Continuous {
		log.Printf("deepgram: single utterance complete")
		return true
	}
	return false
}
