package recording

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.SampleRate != 16000 {
		t.Errorf("default sample rate should be 16000, got %d", config.SampleRate)
	}
	if config.Channels != 1 {
		t.Errorf("default channels should be 1, got %d", config.Channels)
	}
	if config.Format != "s16le" {
		t.Errorf("default format should be s16le, got %s", config.Format)
	}
	if config.BufferSize != 3200 {
		t.Errorf("default buffer size should be 3200, got %d", config.BufferSize)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig()
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"negative sample rate", func(c *Config) { c.SampleRate = -1 }},
		{"zero channels", func(c *Config) { c.Channels = 0 }},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }},
		{"zero channel buffer", func(c *Config) { c.ChannelBufferSize = 0 }},
		{"empty format", func(c *Config) { c.Format = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestBuildPwRecordArgs(t *testing.T) {
	r := NewDefaultRecorder()
	want := []string{"--format", "s16le", "--rate", "16000", "--channels", "1", "-"}
	if got := r.buildPwRecordArgs(); !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}

	cfg := DefaultConfig()
	cfg.Device = "alsa_input.usb"
	r = NewRecorder(cfg)
	want = []string{"--format", "s16le", "--rate", "16000", "--channels", "1", "--target", "alsa_input.usb", "-"}
	if got := r.buildPwRecordArgs(); !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		stderr string
		want   error
	}{
		{"stderr permission", errors.New("exit status 1"), "Permission denied", ErrPermission},
		{"fs permission", os.ErrPermission, "", ErrPermission},
		{"not found", exec.ErrNotFound, "", ErrCaptureToolMissing},
		{"pipewire down", errors.New("exit status 1"), "can't connect: Connection refused", ErrCaptureToolMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err, tt.stderr); !errors.Is(got, tt.want) {
				t.Errorf("classify = %v, want %v", got, tt.want)
			}
		})
	}

	plain := errors.New("exit status 2")
	if got := classify(plain, "unrelated"); got != plain {
		t.Errorf("unrecognised error should pass through, got %v", got)
	}
}

func TestStartMissingTool(t *testing.T) {
	r := NewDefaultRecorder()
	r.command = "voicelink-no-such-recorder"

	_, _, err := r.Start(context.Background())
	if !errors.Is(err, ErrCaptureToolMissing) {
		t.Fatalf("Start() error = %v, want ErrCaptureToolMissing", err)
	}
	if r.IsRecording() {
		t.Error("recorder should not be recording after failed start")
	}
	if err := r.Stop(); err != nil {
		t.Errorf("Stop() on idle recorder = %v", err)
	}
}

func fakeCapture(t *testing.T, script string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "fake-pw-record")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCaptureFrames(t *testing.T) {
	r := NewDefaultRecorder()
	r.command = fakeCapture(t, "printf 'abcd'")

	frames, errs, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var data []byte
	timeout := time.After(5 * time.Second)
	for frames != nil {
		select {
		case f, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			data = append(data, f.Data...)
		case <-timeout:
			t.Fatal("capture did not finish")
		}
	}
	if string(data) != "abcd" {
		t.Errorf("captured %q", data)
	}
	if err := <-errs; err != nil {
		t.Errorf("unexpected capture error: %v", err)
	}
	r.Wait()
	if r.IsRecording() {
		t.Error("recorder still recording after EOF")
	}
}

func TestCapturePermissionDenied(t *testing.T) {
	r := NewDefaultRecorder()
	r.command = fakeCapture(t, "echo 'Permission denied' >&2; exit 1")

	frames, errs, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for range frames {
	}
	if err := <-errs; !errors.Is(err, ErrPermission) {
		t.Errorf("capture error = %v, want ErrPermission", err)
	}
}

func TestStopCancelsCapture(t *testing.T) {
	r := NewDefaultRecorder()
	r.command = fakeCapture(t, "while true; do printf 'xx'; sleep 0.05; done")

	frames, errs, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-frames:
	case <-time.After(5 * time.Second):
		t.Fatal("no frame captured")
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	done := make(chan struct{})
	go func() {
		for range frames {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("frames channel not closed after Stop")
	}
	if err := <-errs; err != nil {
		t.Errorf("Stop should not report an error, got %v", err)
	}
}
