// Package recording captures microphone audio through PipeWire's pw-record.
package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrCaptureToolMissing means pw-record is not installed or PipeWire is
	// not running.
	ErrCaptureToolMissing = errors.New("audio capture tool unavailable")
	// ErrPermission means the capture process was refused access to the
	// microphone.
	ErrPermission = errors.New("microphone access denied")
	// ErrAlreadyRecording is returned by Start on a busy Recorder.
	ErrAlreadyRecording = errors.New("already recording")
)

type AudioFrame struct {
	Data      []byte
	Timestamp time.Time
}

type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	BufferSize        int
	Device            string
	ChannelBufferSize int
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Channels:          1,
		Format:            "s16le",
		BufferSize:        3200, // 100ms of 16kHz mono s16le
		Device:            "",
		ChannelBufferSize: 50,
	}
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", c.Channels)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", c.BufferSize)
	}
	if c.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid ChannelBufferSize: %d", c.ChannelBufferSize)
	}
	if c.Format == "" {
		return fmt.Errorf("invalid Format: empty")
	}
	if c.Format == "s16le" && c.BufferSize%(2*c.Channels) != 0 {
		log.Printf("Recording: BufferSize %d not aligned to frame size %d; audio frames may split",
			c.BufferSize, 2*c.Channels)
	}
	return nil
}

// Recorder runs one pw-record process at a time and streams its stdout as
// frames.
type Recorder struct {
	config    Config
	command   string
	recording atomic.Bool
	dropped   atomic.Int64

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc

	wg sync.WaitGroup
}

func NewRecorder(config Config) *Recorder {
	return &Recorder{config: config, command: "pw-record"}
}

func NewDefaultRecorder() *Recorder { return NewRecorder(DefaultConfig()) }

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Dropped is the number of frames discarded because the consumer was slow.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Start launches the capture process. The frame channel is closed when
// capture ends; a capture failure is delivered on the error channel first.
func (r *Recorder) Start(ctx context.Context) (<-chan AudioFrame, <-chan error, error) {
	if r.recording.Load() {
		return nil, nil, ErrAlreadyRecording
	}
	if err := r.config.Validate(); err != nil {
		return nil, nil, err
	}
	if _, err := exec.LookPath(r.command); err != nil {
		return nil, nil, fmt.Errorf("%w: %s not found (install pipewire-tools): %v", ErrCaptureToolMissing, r.command, err)
	}

	recordingCtx, cancel := context.WithCancel(ctx)

	frameCh := make(chan AudioFrame, r.config.ChannelBufferSize)
	errCh := make(chan error, 1)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.recording.Store(true)
	r.wg.Add(1)
	go r.captureLoop(recordingCtx, frameCh, errCh)

	return frameCh, errCh, nil
}

func (r *Recorder) Stop() error {
	if !r.recording.Load() {
		return nil
	}
	r.requestCancel()
	return nil
}

func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) captureLoop(ctx context.Context, frameCh chan<- AudioFrame, errCh chan<- error) {
	var lastStderr atomic.Value
	lastStderr.Store("")
	var stderrDone chan struct{}

	defer func() {
		if stderrDone != nil {
			<-stderrDone
		}
		r.mu.Lock()
		if r.cmd != nil {
			werr := r.cmd.Wait()
			if werr != nil && ctx.Err() == nil {
				r.emitErr(errCh, classify(werr, lastStderr.Load().(string)))
			}
			r.cmd = nil
		}
		if r.cancel != nil {
			r.cancel()
			r.cancel = nil
		}
		r.mu.Unlock()

		close(frameCh)
		close(errCh)
		r.recording.Store(false)
		r.wg.Done()
	}()

	cmd := exec.CommandContext(ctx, r.command, r.buildPwRecordArgs()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.emitErr(errCh, fmt.Errorf("create stdout pipe: %w", err))
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.emitErr(errCh, fmt.Errorf("create stderr pipe: %w", err))
		return
	}

	if err := cmd.Start(); err != nil {
		r.emitErr(errCh, classify(fmt.Errorf("start %s: %w", r.command, err), ""))
		return
	}
	r.mu.Lock()
	r.cmd = cmd
	r.mu.Unlock()

	stderrDone = make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			lastStderr.Store(line)
			log.Printf("Recording stderr: %s", line)
		}
	}()

	buffer := make([]byte, r.config.BufferSize)
	lastDropLog := time.Now()
	var droppedSinceLog int

	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			frameData := make([]byte, n)
			copy(frameData, buffer[:n])

			select {
			case frameCh <- AudioFrame{Data: frameData, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			default:
				r.dropped.Add(1)
				droppedSinceLog++
				if time.Since(lastDropLog) > time.Second {
					log.Printf("Recording: dropped %d frames due to backpressure", droppedSinceLog)
					lastDropLog = time.Now()
					droppedSinceLog = 0
				}
			}
		}

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && ctx.Err() == nil {
				r.emitErr(errCh, fmt.Errorf("read audio: %w", readErr))
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// classify wraps a capture failure with ErrPermission or
// ErrCaptureToolMissing when the cause is recognisable.
func classify(err error, stderr string) error {
	lower := strings.ToLower(stderr)
	switch {
	case errors.Is(err, fs.ErrPermission),
		strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "access denied"):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	case errors.Is(err, exec.ErrNotFound),
		errors.Is(err, fs.ErrNotExist),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "can't connect"):
		return fmt.Errorf("%w: %v", ErrCaptureToolMissing, err)
	default:
		return err
	}
}

func (r *Recorder) requestCancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Recorder) emitErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
	log.Printf("Recording error: %v", err)
}

func (r *Recorder) buildPwRecordArgs() []string {
	args := []string{
		"--format", r.config.Format,
		"--rate", strconv.Itoa(r.config.SampleRate),
		"--channels", strconv.Itoa(r.config.Channels),
	}
	if r.config.Device != "" {
		args = append(args, "--target", r.config.Device)
	}
	return append(args, "-") // stdout
}

// CheckPipeWireAvailable verifies pw-record exists and PipeWire answers.
func CheckPipeWireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("%w: pw-record not found (install pipewire-tools): %v", ErrCaptureToolMissing, err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := exec.CommandContext(checkCtx, "pw-cli", "info").Run(); err != nil {
		return fmt.Errorf("%w: PipeWire not running or accessible: %v", ErrCaptureToolMissing, err)
	}
	return nil
}
