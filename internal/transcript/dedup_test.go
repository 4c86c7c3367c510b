package transcript

import (
	"testing"

	"github.com/leonardotrapani/voicelink/internal/engine"
)

func final(text string) engine.Result   { return engine.Result{Text: text, IsFinal: true} }
func interim(text string) engine.Result { return engine.Result{Text: text} }

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "hello"},
		{"  hello   World ", "hello world"},
		{"HELLO\tworld\n", "hello world"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name        string
		results     []engine.Result
		from        int
		wantFinal   string
		wantInterim string
		wantDup     int
	}{
		{
			name:        "final then interim",
			results:     []engine.Result{final("hello "), interim("wor")},
			wantFinal:   "hello ",
			wantInterim: "wor",
		},
		{
			name:        "last interim wins",
			results:     []engine.Result{interim("a"), interim("ab"), interim("abc")},
			wantInterim: "abc",
		},
		{
			name:      "empty final ignored",
			results:   []engine.Result{final("   "), final("")},
			wantFinal: "",
		},
		{
			name:      "adjacent duplicate dropped",
			results:   []engine.Result{final("hi there"), final("Hi  there")},
			wantFinal: "hi there ",
			wantDup:   1,
		},
		{
			name:      "resume offset skips earlier results",
			results:   []engine.Result{final("one"), final("two")},
			from:      1,
			wantFinal: "two ",
		},
		{
			name:      "inner spacing kept",
			results:   []engine.Result{final("  keep  this  ")},
			wantFinal: "keep  this ",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Reconcile(tc.results, tc.from, NewSeenSet(0))
			if got.NewFinal != tc.wantFinal {
				t.Errorf("NewFinal = %q, want %q", got.NewFinal, tc.wantFinal)
			}
			if got.Interim != tc.wantInterim {
				t.Errorf("Interim = %q, want %q", got.Interim, tc.wantInterim)
			}
			if got.Duplicates != tc.wantDup {
				t.Errorf("Duplicates = %d, want %d", got.Duplicates, tc.wantDup)
			}
		})
	}
}

func TestReconcileReplayIsIdempotent(t *testing.T) {
	seen := NewSeenSet(0)
	var tr Transcript
	batch := []engine.Result{final("the quick fox"), final("jumps")}

	for i := 0; i < 5; i++ {
		tr.Apply(Reconcile(batch, 0, seen))
	}

	if got, want := tr.Text(), "the quick fox jumps "; got != want {
		t.Fatalf("transcript = %q, want %q", got, want)
	}
	if tr.Len() != 2 {
		t.Fatalf("segments = %d, want 2", tr.Len())
	}
}

func TestReconcileEmptyFinalNotRemembered(t *testing.T) {
	seen := NewSeenSet(0)
	Reconcile([]engine.Result{final("  ")}, 0, seen)
	if seen.Len() != 0 {
		t.Fatalf("empty final added to seen set")
	}
	if seen.Last() != "" {
		t.Fatalf("empty final recorded as last appended")
	}
}

func TestSeenSetResetKeepsLast(t *testing.T) {
	seen := NewSeenSet(0)
	Reconcile([]engine.Result{final("first"), final("second")}, 0, seen)

	seen.Reset()
	got := Reconcile([]engine.Result{final("Second")}, 0, seen)
	if got.NewFinal != "" {
		t.Fatalf("immediate repeat after reset appended %q", got.NewFinal)
	}

	got = Reconcile([]engine.Result{final("first")}, 0, seen)
	if got.NewFinal != "first " {
		t.Fatalf("older key should be forgotten after reset, got %q", got.NewFinal)
	}

	seen.Clear()
	if seen.Seen("first") {
		t.Fatalf("Clear should drop the last key too")
	}
}

func TestSeenSetBounded(t *testing.T) {
	seen := NewSeenSet(2)
	seen.Add("a")
	seen.Add("b")
	seen.Add("c")

	if seen.Len() != 2 {
		t.Fatalf("Len = %d, want 2", seen.Len())
	}
	if seen.Seen("a") {
		t.Errorf("oldest key should be evicted")
	}
	if !seen.Seen("b") || !seen.Seen("c") {
		t.Errorf("recent keys should survive")
	}
}

func TestTranscriptApply(t *testing.T) {
	var tr Transcript
	seen := NewSeenSet(0)

	grew := tr.Apply(Reconcile([]engine.Result{final("hello "), interim("wor")}, 0, seen))
	if !grew {
		t.Fatalf("first batch should grow transcript")
	}
	if tr.Text() != "hello " || tr.Interim() != "wor" {
		t.Fatalf("got %q / %q", tr.Text(), tr.Interim())
	}

	grew = tr.Apply(Reconcile([]engine.Result{final("hello "), final("world ")}, 0, seen))
	if !grew {
		t.Fatalf("second batch should grow transcript")
	}
	if tr.Text() != "hello world " || tr.Interim() != "" {
		t.Fatalf("got %q / %q", tr.Text(), tr.Interim())
	}
	if tr.Full() != "hello world " {
		t.Fatalf("Full = %q", tr.Full())
	}

	tr.Reset()
	if !tr.Empty() {
		t.Fatalf("Reset should empty the transcript")
	}
}
