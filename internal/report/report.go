// Package report carries the failure-reporting contract shared by every
// harness helper: a call site, a failure taxonomy, and the minimal slice of
// testing.TB the helpers need.
//
// Every helper takes an explicit CallSite so a failure points at the line
// in the test that asked for the check, not at harness internals. This
// matters most for timeouts, which are detected long after the test line
// that started the wait has been left behind on the stack.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// TB is the subset of testing.TB the harness reports through.
// *testing.T satisfies it; testutil.Recorder is a fake for self-tests.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
}

// CallSite identifies the source line a check was requested from.
type CallSite struct {
	File string
	Line int
}

// String renders the site as "file.go:42" using the base file name.
func (s CallSite) String() string {
	if s.File == "" {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(s.File), s.Line)
}

// Here returns the call site of its caller.
func Here() CallSite {
	return Caller(1)
}

// Caller returns the call site skip frames above its caller.
// Caller(0) is the function calling Caller.
func Caller(skip int) CallSite {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallSite{}
	}
	return CallSite{File: file, Line: line}
}

// Kind categorizes harness failures.
type Kind string

const (
	// KindTimeout: a bridge wait exceeded its deadline while still pending.
	KindTimeout Kind = "TIMEOUT"

	// KindDoubleCompletion: a completion signal was completed more than once.
	KindDoubleCompletion Kind = "DOUBLE_COMPLETION"

	// KindAssertionMismatch: a containment, equality or count check failed.
	KindAssertionMismatch Kind = "ASSERTION_MISMATCH"

	// KindInvalidFactoryResult: a factory did not reject an invalid argument properly.
	KindInvalidFactoryResult Kind = "INVALID_FACTORY_RESULT"
)

// Failure is a harness-raised failure with call-site attribution.
type Failure struct {
	Kind    Kind
	Site    CallSite
	Message string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %s", f.Site, f.Kind, f.Message)
}

// Newf builds a Failure with a formatted message.
func Newf(kind Kind, site CallSite, format string, args ...any) *Failure {
	return &Failure{
		Kind:    kind,
		Site:    site,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err is (or wraps) a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

// Report delivers f to t as a non-fatal test error.
//
// The failure text already names the originating site, so the position
// testing adds for the Errorf call itself can be ignored when reading output.
func Report(t TB, f *Failure) {
	t.Helper()
	t.Errorf("%s", f.Error())
}

// Reportf builds and reports a failure in one step.
func Reportf(t TB, kind Kind, site CallSite, format string, args ...any) {
	t.Helper()
	Report(t, Newf(kind, site, format, args...))
}
