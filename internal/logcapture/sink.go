package logcapture

import (
	"strings"
	"sync"

	"github.com/roach88/adalharness/internal/testutil"
)

// Separator joins records of one part in Logs.
const Separator = "\n"

// Record is one captured entry. Records are immutable once appended.
type Record struct {
	Seq  int64
	Part Part
	Text string
}

// Sink is the append-only store of captured records.
//
// Records are kept per part and globally, both in append order. The only
// mutations are Append and Clear. The mutex lets background goroutines of
// the library under test log while the test goroutine queries.
type Sink struct {
	mu    sync.Mutex
	clock *testutil.DeterministicClock
	parts [numParts][]Record
	all   []Record
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{clock: testutil.NewDeterministicClock()}
}

// Append adds text to part and to the global sequence.
// Invalid parts are ignored.
func (s *Sink) Append(part Part, text string) {
	if !part.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(part, text)
}

func (s *Sink) appendLocked(part Part, text string) {
	rec := Record{Seq: s.clock.Next(), Part: part, Text: text}
	s.parts[part] = append(s.parts[part], rec)
	s.all = append(s.all, rec)
}

// Logs returns the texts captured for part, newline-joined in append order.
func (s *Sink) Logs(part Part) string {
	if !part.Valid() {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	texts := make([]string, len(s.parts[part]))
	for i, rec := range s.parts[part] {
		texts[i] = rec.Text
	}
	return strings.Join(texts, Separator)
}

// Records returns a copy of the global sequence.
func (s *Sink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.all))
	copy(out, s.all)
	return out
}

// Len returns the number of records captured across all parts.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.all)
}

// Clear empties every part and the global sequence and restarts Seq at 1.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.parts {
		s.parts[i] = nil
	}
	s.all = nil
	s.clock.Reset()
}

// Count returns the sequential occurrence count of needle in Logs(part).
func (s *Sink) Count(part Part, needle string) int {
	return CountOccurrences(needle, s.Logs(part))
}
