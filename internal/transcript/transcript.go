package transcript

// Transcript is the append-only list of finalized segments plus the single
// interim fragment that logically follows them.
type Transcript struct {
	segments []string
	text     string
	interim  string
}

// Apply appends the new finals of r and replaces the interim fragment.
// It reports whether the finalized text grew.
func (t *Transcript) Apply(r Reconciled) bool {
	for _, seg := range r.Segments {
		t.segments = append(t.segments, seg)
		t.text += seg + " "
	}
	t.interim = r.Interim
	return len(r.Segments) > 0
}

// Text returns the finalized transcript.
func (t *Transcript) Text() string {
	return t.text
}

// Interim returns the current unconfirmed fragment.
func (t *Transcript) Interim() string {
	return t.interim
}

// SetInterim replaces the interim fragment.
func (t *Transcript) SetInterim(s string) {
	t.interim = s
}

// Full is the finalized text followed by the interim fragment.
func (t *Transcript) Full() string {
	return t.text + t.interim
}

// Segments returns a copy of the finalized segments.
func (t *Transcript) Segments() []string {
	out := make([]string, len(t.segments))
	copy(out, t.segments)
	return out
}

// Len is the number of finalized segments.
func (t *Transcript) Len() int {
	return len(t.segments)
}

// Empty reports whether there is neither final nor interim text.
func (t *Transcript) Empty() bool {
	return len(t.segments) == 0 && t.interim == ""
}

// Reset discards everything. Only a new user session may do this.
func (t *Transcript) Reset() {
	t.segments = nil
	t.text = ""
	t.interim = ""
}
