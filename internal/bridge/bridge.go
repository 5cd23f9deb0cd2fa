package bridge

import (
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roach88/adalharness/internal/foreground"
	"github.com/roach88/adalharness/internal/report"
)

// Defaults used when no option overrides them.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 5 * time.Millisecond
)

// Outcome is the result of a RunAndAwait call.
type Outcome int

const (
	// Completed means the signal fired before the deadline.
	Completed Outcome = iota + 1
	// TimedOut means the deadline passed first and a Timeout failure was reported.
	TimedOut
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Clock supplies the current time for deadline checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Bridge drives the foreground queue on behalf of waiting test code.
type Bridge struct {
	t            report.TB
	queue        foreground.Queue
	clock        Clock
	timeout      time.Duration
	pollInterval time.Duration
	logger       *slog.Logger

	nextID atomic.Int64
	depth  int
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithTimeout sets the per-call deadline. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithPollInterval sets how long an idle pump waits for new tasks before
// re-checking its deadline. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.pollInterval = d
		}
	}
}

// WithClock replaces the wall clock used for deadlines.
func WithClock(c Clock) Option {
	return func(b *Bridge) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithLogger sets the logger for the bridge's own diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a bridge that reports failures to t and pumps q.
func New(t report.TB, q foreground.Queue, opts ...Option) *Bridge {
	b := &Bridge{
		t:            t,
		queue:        q,
		clock:        systemClock{},
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Timeout returns the configured per-call deadline.
func (b *Bridge) Timeout() time.Duration {
	return b.timeout
}

// RunAndAwait posts work onto the foreground queue and pumps the queue until
// the signal handed to work is completed or the deadline elapses.
//
// On timeout a KindTimeout failure attributed to site is reported and
// TimedOut is returned. The abandoned signal absorbs one late completion
// silently.
func (b *Bridge) RunAndAwait(site report.CallSite, work func(sig *Signal)) Outcome {
	b.t.Helper()

	sig := &Signal{id: b.nextID.Add(1)}
	start := b.clock.Now()
	deadline := start.Add(b.timeout)

	b.depth++
	defer func() { b.depth-- }()

	b.logger.Debug("bridge wait started",
		"signal", sig.id,
		"site", site.String(),
		"depth", b.depth,
		"timeout", b.timeout,
	)

	if !b.queue.Post(func() { work(sig) }) {
		return b.timeoutAt(site, sig, "foreground queue is closed; work was never scheduled")
	}

	drained := 0
	for !sig.Done() {
		if !b.clock.Now().Before(deadline) {
			return b.timeoutAt(site, sig, "no completion within %s", b.timeout)
		}

		if foreground.RunNext(b.queue) {
			drained++
			continue
		}

		if b.queue.Closed() && b.queue.Len() == 0 {
			return b.timeoutAt(site, sig, "foreground queue closed while waiting for completion")
		}

		b.idle()
	}

	b.logger.Debug("bridge wait completed",
		"signal", sig.id,
		"site", site.String(),
		"tasks", drained,
	)
	return Completed
}

// idle waits for a wake-up from the queue or one poll interval, whichever
// comes first. It never waits on the signal itself.
func (b *Bridge) idle() {
	timer := time.NewTimer(b.pollInterval)
	defer timer.Stop()

	select {
	case <-b.queue.Wait():
	case <-timer.C:
	}
}

func (b *Bridge) timeoutAt(site report.CallSite, sig *Signal, format string, args ...any) Outcome {
	b.t.Helper()

	if !sig.abandon() {
		// Completed on the same boundary the deadline was detected.
		return Completed
	}

	f := report.Newf(report.KindTimeout, site, format, args...)
	b.logger.Warn("bridge wait timed out",
		"signal", sig.id,
		"site", site.String(),
		"error", f.Message,
	)
	report.Report(b.t, f)
	return TimedOut
}

// Complete signals that the awaited callback fired.
//
// The first completion of a pending signal lets its pump stop. The first
// late completion of a timed-out signal is tolerated. Any further
// completion is a KindDoubleCompletion failure attributed to site; the
// signal's state is left unchanged.
func (b *Bridge) Complete(site report.CallSite, sig *Signal) {
	b.t.Helper()

	if sig == nil {
		report.Reportf(b.t, report.KindDoubleCompletion, site, "completion called with a nil signal")
		return
	}

	stale, ok := sig.complete()
	switch {
	case ok && stale:
		b.logger.Warn("late completion for timed out wait ignored",
			"signal", sig.id,
			"site", site.String(),
		)
	case ok:
		b.logger.Debug("completion signaled",
			"signal", sig.id,
			"site", site.String(),
		)
	default:
		report.Reportf(b.t, report.KindDoubleCompletion, site,
			"completion signal %d was already completed", sig.id)
	}
}
