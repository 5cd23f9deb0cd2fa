package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/adalharness/internal/archive"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// RunsResult is the JSON payload of the runs command.
type RunsResult struct {
	Runs []archive.Run `json:"runs"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs",
		Long: `List every archived run, oldest first.

Examples:
  adalharness runs --db ./adal-logs.db
  adalharness runs --db ./adal-logs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: runWithOutput(rootOpts, func(cmd *cobra.Command, f *OutputFormatter) error {
			return runRuns(opts, cmd, f)
		}),
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to archive database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command, f *OutputFormatter) error {
	ctx := context.Background()

	a, err := openArchive(f, opts.Database)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeArchiveRead, "failed to list runs", err)
	}
	if runs == nil {
		runs = []archive.Run{}
	}

	if opts.Format == "json" {
		return f.Success(RunsResult{Runs: runs})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No archived runs")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRECORDS\tCREATED")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			run.ID, run.Name, run.RecordCount, run.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
