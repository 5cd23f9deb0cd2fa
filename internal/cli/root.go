package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the adalharness CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "adalharness",
		Short: "Inspect archived log captures",
		Long: `Inspect the log captures a harness archived when a test failed.

Each archived run holds the four-part log record of one test
(level, message, info and code), in the order it was captured.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, ErrCodeInvalidFormat,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))

	return cmd
}

// formatter builds the output formatter for cmd. Diagnostics go to
// stderr so JSON on stdout stays parseable.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// runWithOutput adapts a command body to cobra's RunE. Errors are also
// rendered as a JSON envelope when --format json is set.
func runWithOutput(opts *RootOptions, run func(cmd *cobra.Command, f *OutputFormatter) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		f := opts.formatter(cmd)
		err := run(cmd, f)
		if err != nil {
			if rerr := f.ReportError(err); rerr != nil {
				return rerr
			}
		}
		return err
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
