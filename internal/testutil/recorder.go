package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// Recorder is a fake testing.T that records failures instead of failing
// the enclosing test. Harness self-tests hand a Recorder to the code under
// test and then assert on what it captured.
//
// It implements report.TB, and with Cleanup/Name/Failed also harness.T.
type Recorder struct {
	mu       sync.Mutex
	name     string
	failures []string
	cleanups []func()
}

// NewRecorder returns an empty recorder named "Recorder".
func NewRecorder() *Recorder {
	return NewNamedRecorder("Recorder")
}

// NewNamedRecorder returns an empty recorder reporting name from Name().
func NewNamedRecorder(name string) *Recorder {
	return &Recorder{name: name}
}

// Name returns the recorder's test name.
func (r *Recorder) Name() string {
	return r.name
}

// Cleanup registers f to run from RunCleanups.
func (r *Recorder) Cleanup(f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanups = append(r.cleanups, f)
}

// RunCleanups runs registered cleanups last-in first-out, like testing does
// at the end of a test, and forgets them.
func (r *Recorder) RunCleanups() {
	r.mu.Lock()
	fns := r.cleanups
	r.cleanups = nil
	r.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Helper is a no-op.
func (r *Recorder) Helper() {}

// Errorf records a formatted failure.
func (r *Recorder) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

// Failures returns a copy of the recorded failure messages in order.
func (r *Recorder) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.failures))
	copy(out, r.failures)
	return out
}

// Failed reports whether anything was recorded.
func (r *Recorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures) > 0
}

// Count returns how many recorded failures contain substr.
func (r *Recorder) Count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.failures {
		if strings.Contains(f, substr) {
			n++
		}
	}
	return n
}

// Reset discards recorded failures.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = nil
}
