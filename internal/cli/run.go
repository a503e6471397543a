package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paracosm-io/paracosm/internal/fabric"
	"github.com/paracosm-io/paracosm/internal/harness"
)

// RunSummary is the output payload of the run command.
type RunSummary struct {
	Scenario    string              `json:"scenario"`
	Timeline    string              `json:"timeline"`
	Steps       []string            `json:"steps"`
	Forks       int                 `json:"forks"`
	Paradoxes   int                 `json:"paradoxes"`
	Relocations int                 `json:"relocations"`
	Diagnostics []fabric.Diagnostic `json:"diagnostics,omitempty"`
	Failures    []string            `json:"failures,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml|lawfile.cue>",
		Short: "Execute a scenario or lawfile against a fresh engine",
		Long: `Execute a YAML scenario (lawfile plus expectations) or a bare CUE
lawfile against a fresh law fabric engine and print the execution trace
and report. Scenario expectations are verified; any mismatch fails the
command with exit code 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, args[0], cmd)
		},
	}
}

func runRun(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var (
		sc     *harness.Scenario
		verify bool
	)
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		loaded, err := harness.LoadScenario(path)
		if err != nil {
			formatter.Fail("E_SCENARIO", err.Error(), nil)
			return &ExitError{Code: ExitCommandError, Message: "loading scenario", Err: err}
		}
		sc = loaded
		verify = true
	case ".cue":
		name := strings.TrimSuffix(filepath.Base(path), ext)
		sc = &harness.Scenario{Name: name, Lawfile: path}
	default:
		msg := fmt.Sprintf("unsupported file type %q (want .yaml or .cue)", ext)
		formatter.Fail("E_USAGE", msg, nil)
		return &ExitError{Code: ExitCommandError, Message: msg}
	}

	res, err := harness.Run(sc)
	if err != nil {
		formatter.Fail("E_COMPILE", err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: "executing lawfile", Err: err}
	}

	summary := RunSummary{
		Scenario:    sc.Name,
		Timeline:    res.Lawfile.Timeline,
		Forks:       len(res.Report.Forks),
		Paradoxes:   len(res.Report.Paradoxes),
		Relocations: len(res.Report.Relocations),
		Diagnostics: res.Report.Diagnostics,
	}
	for _, step := range res.Engine.Trace() {
		summary.Steps = append(summary.Steps, step.Narrative)
	}
	if verify {
		for _, verr := range harness.Verify(res) {
			summary.Failures = append(summary.Failures, verr.Error())
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(summary); err != nil {
			return err
		}
	} else {
		printRunSummary(formatter, summary)
	}

	if len(summary.Failures) > 0 {
		return &ExitError{
			Code:    ExitFailure,
			Message: fmt.Sprintf("%d expectation(s) failed", len(summary.Failures)),
		}
	}
	return nil
}

func printRunSummary(f *OutputFormatter, s RunSummary) {
	fmt.Fprintf(f.Writer, "scenario: %s\n", s.Scenario)
	fmt.Fprintf(f.Writer, "timeline: %s\n", s.Timeline)
	fmt.Fprintln(f.Writer, "trace:")
	for i, narrative := range s.Steps {
		fmt.Fprintf(f.Writer, "  %d. %s\n", i+1, narrative)
	}
	fmt.Fprintf(f.Writer, "forks: %d  paradoxes: %d  relocations: %d\n",
		s.Forks, s.Paradoxes, s.Relocations)
	for _, d := range s.Diagnostics {
		fmt.Fprintf(f.Writer, "diagnostic [%s] %s: %s\n", d.Code, d.EntityID, d.Message)
	}
	for _, failure := range s.Failures {
		fmt.Fprintf(f.Writer, "FAIL: %s\n", failure)
	}
}
