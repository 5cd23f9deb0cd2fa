package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/adalharness/internal/logcapture"
)

// LogsOptions holds flags for the logs command.
type LogsOptions struct {
	*RootOptions
	Database string
	RunID    string
	Part     string // optional - filter to one part
}

// LogRecord is one record in LogsResult.
type LogRecord struct {
	Seq  int64  `json:"seq"`
	Part string `json:"part"`
	Text string `json:"text"`
}

// LogsResult is the JSON payload of the logs command.
type LogsResult struct {
	Name    string      `json:"name"`
	Part    string      `json:"part,omitempty"`
	Records []LogRecord `json:"records"`
}

// NewLogsCommand creates the logs command.
func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the records of an archived run",
		Long: `Print the captured records of an archived run in capture order.

With --part, only that part's records are printed.

Examples:
  adalharness logs --db ./adal-logs.db --run 0192...
  adalharness logs --db ./adal-logs.db --run 0192... --part message`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: runWithOutput(rootOpts, func(cmd *cobra.Command, f *OutputFormatter) error {
			return runLogs(opts, cmd, f)
		}),
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to archive database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.Part, "part", "", "only print one part (level|message|info|code)")

	return cmd
}

func runLogs(opts *LogsOptions, cmd *cobra.Command, f *OutputFormatter) error {
	ctx := context.Background()

	var (
		part     logcapture.Part
		filtered = opts.Part != ""
	)
	if filtered {
		p, err := parsePartFlag(opts.Part)
		if err != nil {
			return err
		}
		part = p
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

	result := LogsResult{Name: run.Name, Records: []LogRecord{}}
	if filtered {
		result.Part = part.String()
	}
	for _, rec := range sink.Records() {
		if filtered && rec.Part != part {
			continue
		}
		result.Records = append(result.Records, LogRecord{Seq: rec.Seq, Part: rec.Part.String(), Text: rec.Text})
	}

	if opts.Format == "json" {
		return f.SuccessForRun(run.ID, result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run: %s (%s)\n", run.Name, run.ID)
	if len(result.Records) == 0 {
		fmt.Fprintln(w, "  (no logs captured)")
		return nil
	}
	for _, rec := range result.Records {
		fmt.Fprintf(w, "  [%d] %-7s %s\n", rec.Seq, rec.Part, rec.Text)
	}
	return nil
}
