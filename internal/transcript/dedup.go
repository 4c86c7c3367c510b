package transcript

import (
	"strings"

	"github.com/leonardotrapani/voicelink/internal/engine"
)

// DefaultSeenLimit bounds the number of keys a SeenSet remembers.
const DefaultSeenLimit = 4096

// Normalize returns the dedup key of a final result: case-folded with runs of
// whitespace collapsed to a single space.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// SeenSet remembers the keys of finals already appended during a session.
// When the limit is reached the oldest key is forgotten first.
type SeenSet struct {
	limit int
	keys  map[string]struct{}
	order []string
	last  string
}

func NewSeenSet(limit int) *SeenSet {
	if limit <= 0 {
		limit = DefaultSeenLimit
	}
	return &SeenSet{limit: limit, keys: make(map[string]struct{})}
}

// Seen reports whether key was appended while the set is live, or is the most
// recently appended key.
func (s *SeenSet) Seen(key string) bool {
	if key == s.last && key != "" {
		return true
	}
	_, ok := s.keys[key]
	return ok
}

// Add records key as appended.
func (s *SeenSet) Add(key string) {
	s.last = key
	if _, ok := s.keys[key]; ok {
		return
	}
	if len(s.order) >= s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.keys, oldest)
	}
	s.keys[key] = struct{}{}
	s.order = append(s.order, key)
}

// Len returns the number of live keys.
func (s *SeenSet) Len() int {
	return len(s.keys)
}

// Last returns the most recently appended key.
func (s *SeenSet) Last() string {
	return s.last
}

// Reset forgets every key except the last appended one. Used when the engine
// restarts inside a session.
func (s *SeenSet) Reset() {
	s.keys = make(map[string]struct{})
	s.order = nil
}

// Clear forgets everything, including the last appended key.
func (s *SeenSet) Clear() {
	s.Reset()
	s.last = ""
}

// Reconciled is the outcome of one result batch.
type Reconciled struct {
	NewFinal   string   // text to append, each segment followed by a space
	Segments   []string // the appended segments, trimmed
	Interim    string   // last non-final text of the batch
	Duplicates int      // finals dropped as replays
}

// Reconcile walks results from the resume offset and decides which finals are
// new. Interim text is replaced, never accumulated.
func Reconcile(results []engine.Result, from int, seen *SeenSet) Reconciled {
	var out Reconciled
	var b strings.Builder
	if from < 0 {
		from = 0
	}

	for i := from; i < len(results); i++ {
		r := results[i]
		if !r.IsFinal {
			out.Interim = r.Text
			continue
		}

		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		key := Normalize(text)
		if seen.Seen(key) {
			out.Duplicates++
			continue
		}
		seen.Add(key)
		out.Segments = append(out.Segments, text)
		b.WriteString(text)
		b.WriteString(" ")
	}

	out.NewFinal = b.String()
	return out
}
