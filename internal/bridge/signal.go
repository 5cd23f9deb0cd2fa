package bridge

import "sync/atomic"

// Signal states.
const (
	statePending int32 = iota
	stateSignaled
	stateAbandoned // the waiter timed out
	stateStale     // an abandoned signal received its late completion
)

// Signal is the one-shot completion flag owned by a single RunAndAwait call.
//
// A signaled Signal never reverts. Signals are only created by the bridge,
// so a late completion for a timed-out wait can never be confused with the
// signal of a later, unrelated wait.
type Signal struct {
	state atomic.Int32
	id    int64
}

// ID returns the bridge-local sequence number of the owning wait.
func (s *Signal) ID() int64 {
	return s.id
}

// Done reports whether the signal has been completed.
func (s *Signal) Done() bool {
	st := s.state.Load()
	return st == stateSignaled || st == stateStale
}

// Abandoned reports whether the waiter gave up on this signal.
func (s *Signal) Abandoned() bool {
	st := s.state.Load()
	return st == stateAbandoned || st == stateStale
}

// complete performs the first-completion transition.
// Returns ok=false when the signal had already been completed.
func (s *Signal) complete() (stale bool, ok bool) {
	if s.state.CompareAndSwap(statePending, stateSignaled) {
		return false, true
	}
	if s.state.CompareAndSwap(stateAbandoned, stateStale) {
		return true, true
	}
	return false, false
}

// abandon marks a pending signal as timed out.
// Returns false if the signal completed first.
func (s *Signal) abandon() bool {
	return s.state.CompareAndSwap(statePending, stateAbandoned)
}
