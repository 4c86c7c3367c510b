package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/leonardotrapani/voicelink/internal/daemon"
	"github.com/spf13/cobra"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDecodeTranscript(t *testing.T) {
	reply, err := decodeTranscript(`OK {"transcript":"hello world ","interim":"and","translation":"hola","target":"es"}`)
	if err != nil {
		t.Fatalf("decodeTranscript() error = %v", err)
	}
	want := daemon.TranscriptReply{Transcript: "hello world ", Interim: "and", Translation: "hola", Target: "es"}
	if reply != want {
		t.Errorf("reply = %+v, want %+v", reply, want)
	}

	for _, bad := range []string{"STATUS state=idle", "OK {not json"} {
		if _, err := decodeTranscript(bad); err == nil {
			t.Errorf("decodeTranscript(%q) succeeded", bad)
		}
	}
}

func TestPrintTranscript(t *testing.T) {
	reply := daemon.TranscriptReply{Transcript: "hello world ", Interim: "and more"}

	tests := []struct {
		name        string
		asJSON      bool
		translation bool
		want        string
		wantErr     bool
	}{
		{name: "text", want: "hello world and more\n"},
		{name: "json", asJSON: true, want: `"interim": "and more"`},
		{name: "translation off", translation: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := printTranscript(&buf, reply, tt.asJSON, tt.translation)
			if (err != nil) != tt.wantErr {
				t.Fatalf("printTranscript() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}

	var buf bytes.Buffer
	reply.Target, reply.Translation = "es", "hola mundo"
	if err := printTranscript(&buf, reply, false, true); err != nil || buf.String() != "hola mundo\n" {
		t.Errorf("translation output = %q, %v", buf.String(), err)
	}
}

func TestPrintStatus(t *testing.T) {
	line := "STATUS state=listening active=true latency=80ms target=none segments=1 restarts=0"

	var raw bytes.Buffer
	if err := printStatus(&raw, line, true, true); err != nil || raw.String() != line+"\n" {
		t.Errorf("raw = %q, %v", raw.String(), err)
	}

	var box bytes.Buffer
	if err := printStatus(&box, line, false, true); err != nil {
		t.Fatalf("printStatus() error = %v", err)
	}
	if !strings.Contains(box.String(), "listening") || !strings.Contains(box.String(), "80ms") {
		t.Errorf("box = %q", box.String())
	}

	if err := printStatus(&box, "ERR boom", false, true); err == nil {
		t.Error("printStatus accepted a non-status line")
	}
}

func TestPrintLanguages(t *testing.T) {
	var buf bytes.Buffer
	printLanguages(&buf)
	out := buf.String()
	for _, want := range []string{"none", "es   Spanish (Español)"} {
		if !strings.Contains(out, want) {
			t.Errorf("languages output missing %q:\n%s", want, out)
		}
	}
}

func TestTranslateRejectsUnknownLanguage(t *testing.T) {
	_, err := execute(t, translateCmd(), "klingon")
	if err == nil || !strings.Contains(err.Error(), "unknown language") {
		t.Errorf("translate klingon = %v", err)
	}
}

func TestVersionWithoutDaemon(t *testing.T) {
	out, err := execute(t, versionCmd())
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "voicelink dev") || !strings.Contains(out, "daemon: not running") {
		t.Errorf("version output = %q", out)
	}
}

func TestToggleWithoutDaemon(t *testing.T) {
	_, err := execute(t, toggleCmd())
	if err == nil || !strings.Contains(err.Error(), "daemon not running") {
		t.Errorf("toggle without daemon = %v", err)
	}
}
