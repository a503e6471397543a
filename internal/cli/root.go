// Package cli implements the paracosm command line interface: executing
// lawfiles and scenarios, validating lawfiles, and read-only causal
// graph analysis over externally produced event batches.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands. Environment variables
// provide the defaults; flags override them.
type RootOptions struct {
	Verbose bool   `env:"PARACOSM_VERBOSE"`
	Format  string `env:"PARACOSM_FORMAT" envDefault:"text"`
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the paracosm CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	if err := env.Parse(opts); err != nil {
		opts.Format = "text"
	}

	cmd := &cobra.Command{
		Use:   "paracosm",
		Short: "paracosm - reactive state substrate",
		Long: "Executes lawfiles against the law fabric engine and analyzes\n" +
			"causal event graphs produced by external stores.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", opts.Format, "output format (json|text)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
