package cli

import (
	"github.com/spf13/cobra"

	"github.com/paracosm-io/paracosm/internal/lawfile"
)

// ValidationResult holds lawfile validation output.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	Name      string `json:"name,omitempty"`
	Timeline  string `json:"timeline,omitempty"`
	Operators int    `json:"operators"`
}

func (r ValidationResult) String() string {
	if !r.Valid {
		return "invalid"
	}
	return "valid: scenario " + r.Name
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <lawfile.cue>",
		Short: "Compile a lawfile without executing it",
		Long: `Compile a CUE lawfile, including every CEL expression, and report
errors with source positions. Nothing is executed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	lf, err := lawfile.Compile(path)
	if err != nil {
		formatter.Fail("E_COMPILE", err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: "lawfile invalid", Err: err}
	}

	return formatter.Success(ValidationResult{
		Valid:     true,
		Name:      lf.Name,
		Timeline:  lf.Timeline,
		Operators: len(lf.Operators),
	})
}
