package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	Database string
	RunID    string
	Part     string
	Needle   string
	Expect   int
}

// CountResult is the JSON payload of the count command.
type CountResult struct {
	Part     string `json:"part"`
	Needle   string `json:"needle"`
	Count    int    `json:"count"`
	Expected *int   `json:"expected,omitempty"`
	Matched  bool   `json:"matched"`
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count occurrences of a string in one part of a run",
		Long: `Count non-overlapping occurrences of --needle in one part of an
archived run, exactly as a harness log count assertion would.

With --expect the command exits 1 when the count differs; with
--format json the mismatch is reported as an error envelope.

Examples:
  adalharness count --db ./adal-logs.db --run 0192... --part code --needle 1
  adalharness count --db ./adal-logs.db --run 0192... --part message --needle acquireToken --expect 2`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: runWithOutput(rootOpts, func(cmd *cobra.Command, f *OutputFormatter) error {
			return runCount(opts, cmd, f)
		}),
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to archive database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.Part, "part", "", "part to search (level|message|info|code) (required)")
	_ = cmd.MarkFlagRequired("part")
	cmd.Flags().StringVar(&opts.Needle, "needle", "", "string to count (required)")
	_ = cmd.MarkFlagRequired("needle")
	cmd.Flags().IntVar(&opts.Expect, "expect", 0, "expected count; exit 1 on mismatch")

	return cmd
}

func runCount(opts *CountOptions, cmd *cobra.Command, f *OutputFormatter) error {
	ctx := context.Background()

	part, err := parsePartFlag(opts.Part)
	if err != nil {
		return err
	}

	a, err := openArchive(f, opts.Database)
	if err != nil {
		return err
	}
	defer a.Close()

	run, sink, err := restoreRun(ctx, f, a, opts.RunID)
	if err != nil {
		return err
	}

	result := CountResult{
		Part:    part.String(),
		Needle:  opts.Needle,
		Count:   sink.Count(part, opts.Needle),
		Matched: true,
	}
	if cmd.Flags().Changed("expect") {
		want := opts.Expect
		result.Expected = &want
		result.Matched = result.Count == want
	}

	if !result.Matched {
		mismatch := NewExitError(ExitFailure, ErrCodeCountMismatch,
			fmt.Sprintf("%s logs contain %q %d times, expected %d", result.Part, opts.Needle, result.Count, *result.Expected))
		mismatch.Details = result
		if opts.Format != "json" {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", result.Count)
		}
		return mismatch
	}

	if opts.Format == "json" {
		return f.SuccessForRun(run.ID, result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", result.Count)
	return nil
}
