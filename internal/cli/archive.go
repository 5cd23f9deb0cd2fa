package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/adalharness/internal/archive"
	"github.com/roach88/adalharness/internal/logcapture"
)

// openArchive opens an existing archive. Unlike archive.Open it refuses to
// create a new database, so a mistyped --db is reported instead of
// silently producing an empty archive.
func openArchive(f *OutputFormatter, path string) (*archive.Archive, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeArchiveNotFound, "archive not found", err)
	}
	f.VerboseLog("opening archive %s", path)
	a, err := archive.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeArchiveOpen, "failed to open archive", err)
	}
	return a, nil
}

// restoreRun loads a run into a fresh sink.
func restoreRun(ctx context.Context, f *OutputFormatter, a *archive.Archive, runID string) (archive.Run, *logcapture.Sink, error) {
	run, err := a.GetRun(ctx, runID)
	if errors.Is(err, archive.ErrRunNotFound) {
		return archive.Run{}, nil, NewExitError(ExitCommandError, ErrCodeRunNotFound, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return archive.Run{}, nil, WrapExitError(ExitCommandError, ErrCodeArchiveRead, "failed to read run", err)
	}

	sink := logcapture.NewSink()
	if err := a.Restore(ctx, runID, sink); err != nil {
		return archive.Run{}, nil, WrapExitError(ExitCommandError, ErrCodeArchiveRead, "failed to restore run", err)
	}
	f.VerboseLog("restored run %s (%s): %d records", run.ID, run.Name, sink.Len())
	return run, sink, nil
}

// parsePartFlag validates a --part value.
func parsePartFlag(value string) (logcapture.Part, error) {
	part, err := logcapture.ParsePart(value)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, ErrCodeInvalidPart, "invalid --part", err)
	}
	return part, nil
}
