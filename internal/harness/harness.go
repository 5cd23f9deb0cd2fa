package harness

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/adalharness/internal/archive"
	"github.com/roach88/adalharness/internal/bridge"
	"github.com/roach88/adalharness/internal/foreground"
	"github.com/roach88/adalharness/internal/logcapture"
	"github.com/roach88/adalharness/internal/report"
	"github.com/roach88/adalharness/internal/validate"
)

// T is the part of *testing.T the harness needs.
type T interface {
	report.TB
	Cleanup(func())
	Failed() bool
	Name() string
}

// Harness bundles the test-scoped infrastructure for one test.
type Harness struct {
	t      T
	cfg    Config
	queue  *foreground.FIFO
	sink   *logcapture.Sink
	bridge *bridge.Bridge
	logger *slog.Logger
}

// New sets up a harness for t. cfg is expected to be valid; invalid
// durations fall back to the bridge defaults.
func New(t T, cfg Config) *Harness {
	t.Helper()

	logger := newLogger(cfg.LogLevel).With("test", t.Name())
	q := foreground.NewFIFO()

	h := &Harness{
		t:     t,
		cfg:   cfg,
		queue: q,
		sink:  logcapture.NewSink(),
		bridge: bridge.New(t, q,
			bridge.WithTimeout(time.Duration(cfg.Timeout)),
			bridge.WithPollInterval(time.Duration(cfg.PollInterval)),
			bridge.WithLogger(logger),
		),
		logger: logger,
	}

	h.begin()
	t.Cleanup(h.end)
	return h
}

func newLogger(level string) *slog.Logger {
	lvl, enabled, err := parseLevel(level)
	if err != nil || !enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func (h *Harness) begin() {
	h.sink.Clear()
	h.logger.Debug("test begin")
}

func (h *Harness) end() {
	if h.t.Failed() && h.cfg.ArchiveOnFailure && h.cfg.ArchivePath != "" {
		h.archiveLogs()
	}

	h.sink.Clear()
	h.queue.Close()
	if n := h.queue.Len(); n > 0 {
		h.logger.Warn("test ended with undrained foreground tasks", "tasks", n)
	}
	h.logger.Debug("test end")
}

func (h *Harness) archiveLogs() {
	a, err := archive.Open(h.cfg.ArchivePath)
	if err != nil {
		h.t.Errorf("archive captured logs: %v", err)
		return
	}
	defer a.Close()

	id, err := a.SaveRun(context.Background(), h.t.Name(), h.sink.Records())
	if err != nil {
		h.t.Errorf("archive captured logs: %v", err)
		return
	}
	h.logger.Info("captured logs archived", "run", id, "path", h.cfg.ArchivePath)
}

// Queue returns the foreground queue the library under test must post its
// completion callbacks to.
func (h *Harness) Queue() foreground.Queue {
	return h.queue
}

// Sink returns the test's log sink.
func (h *Harness) Sink() *logcapture.Sink {
	return h.sink
}

// Bridge returns the underlying bridge.
func (h *Harness) Bridge() *bridge.Bridge {
	return h.bridge
}

// Config returns the harness configuration.
func (h *Harness) Config() Config {
	return h.cfg
}

// Logger returns a logger for the library under test. Everything it
// writes at or above capture_level lands in the sink.
func (h *Harness) Logger() *slog.Logger {
	opts := &logcapture.HandlerOptions{Level: slog.LevelDebug}
	if lvl, enabled, err := parseLevel(h.cfg.CaptureLevel); err == nil && enabled {
		opts.Level = lvl
	}
	return slog.New(h.sink.Handler(opts))
}

// CallAndWait runs work on the foreground queue and pumps the queue until
// work's signal is completed or the timeout elapses.
func (h *Harness) CallAndWait(work func(sig *bridge.Signal)) bridge.Outcome {
	h.t.Helper()
	return h.bridge.RunAndAwait(report.Caller(1), work)
}

// Complete signals sig from a completion callback.
func (h *Harness) Complete(sig *bridge.Signal) {
	h.t.Helper()
	h.bridge.Complete(report.Caller(1), sig)
}

// Logs returns the captured text for part.
func (h *Harness) Logs(part logcapture.Part) string {
	return h.sink.Logs(part)
}

// CountLogs returns the sequential occurrence count of needle in part.
func (h *Harness) CountLogs(part logcapture.Part, needle string) int {
	return h.sink.Count(part, needle)
}

// ClearLogs empties the sink, e.g. between repeated operations in one test.
func (h *Harness) ClearLogs() {
	h.sink.Clear()
}

// AssertLogsContain fails unless part contains text.
func (h *Harness) AssertLogsContain(part logcapture.Part, text string) bool {
	h.t.Helper()
	return logcapture.AssertContains(h.t, report.Caller(1), h.sink, part, text)
}

// AssertLogsNotContain fails if part contains text.
func (h *Harness) AssertLogsNotContain(part logcapture.Part, text string) bool {
	h.t.Helper()
	return logcapture.AssertNotContains(h.t, report.Caller(1), h.sink, part, text)
}

// AssertLogCount fails unless needle occurs want times in part.
func (h *Harness) AssertLogCount(part logcapture.Part, needle string, want int) bool {
	h.t.Helper()
	return logcapture.AssertCount(h.t, report.Caller(1), h.sink, part, needle, want)
}

// ValidateFactory checks that a factory rejected argument properly.
func (h *Harness) ValidateFactory(argument string, obj any, err error) bool {
	h.t.Helper()
	return validate.FactoryRejectsInvalidArgument(h.t, report.Caller(1), argument, obj, err)
}

// ValidateInvalidArgument checks that err reports argument as invalid.
func (h *Harness) ValidateInvalidArgument(argument string, err error) bool {
	h.t.Helper()
	return validate.InvalidArgument(h.t, report.Caller(1), argument, err)
}

// AssertValidText fails when text is blank.
func (h *Harness) AssertValidText(text, message string) bool {
	h.t.Helper()
	return validate.ValidText(h.t, report.Caller(1), text, message)
}
