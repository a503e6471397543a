// Package harness runs declarative YAML scenarios through the law
// fabric engine for conformance testing. A scenario names a lawfile and
// states expectations over the final reality and execution report;
// golden trace comparison pins the exact execution narrative.
//
// Execution is deterministic by default: a fixed-start manual clock and
// sequential id generator are injected so traces and golden files are
// reproducible across runs.
package harness

import (
	"fmt"

	"github.com/paracosm-io/paracosm/internal/causal"
	"github.com/paracosm-io/paracosm/internal/fabric"
	"github.com/paracosm-io/paracosm/internal/lawfile"
	"github.com/paracosm-io/paracosm/internal/prop"
	"github.com/paracosm-io/paracosm/internal/testutil"
)

// Result bundles the outcome of one scenario execution.
type Result struct {
	Scenario *Scenario
	Lawfile  *lawfile.Lawfile
	Engine   *fabric.Engine
	Report   *fabric.Report
}

// Option overrides the deterministic defaults, e.g. for CLI runs on the
// system clock.
type Option func(*runConfig)

type runConfig struct {
	clock causal.Clock
	ids   causal.IDGenerator
}

// WithClock substitutes the execution clock.
func WithClock(c causal.Clock) Option {
	return func(cfg *runConfig) { cfg.clock = c }
}

// WithIDs substitutes the id generator used for fork branch timelines.
func WithIDs(ids causal.IDGenerator) Option {
	return func(cfg *runConfig) { cfg.ids = ids }
}

// Run compiles the scenario's lawfile and executes it on a fresh engine.
func Run(sc *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		clock: testutil.NewDefaultClock(),
		ids:   testutil.NewSequenceIDs("branch"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	lf, err := lawfile.Compile(sc.Lawfile)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	e := fabric.New(lf.Timeline,
		fabric.WithClock(cfg.clock),
		fabric.WithIDs(cfg.ids),
	)
	e.AddMany(lf.Operators)
	rpt := e.Execute()

	return &Result{Scenario: sc, Lawfile: lf, Engine: e, Report: rpt}, nil
}

// Verify checks every expectation and returns all mismatches rather than
// failing fast.
func Verify(res *Result) []error {
	var errs []error
	sc := res.Scenario
	exp := sc.Expect

	for id, raw := range exp.Entities {
		want, err := prop.ObjectFromAny(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %s: bad expectation: %w", id, err))
			continue
		}
		st, ok := res.Engine.Entity(id)
		if !ok {
			errs = append(errs, fmt.Errorf("entity %s: expected present, but absent", id))
			continue
		}
		if !st.Props.Equal(want) {
			gotJSON, _ := prop.MarshalCanonical(st.Props)
			wantJSON, _ := prop.MarshalCanonical(want)
			errs = append(errs, fmt.Errorf("entity %s: props %s, want %s", id, gotJSON, wantJSON))
		}
	}

	for _, id := range exp.Absent {
		if res.Engine.Reality().Has(id) {
			errs = append(errs, fmt.Errorf("entity %s: expected absent, but present", id))
		}
	}

	if got := len(res.Report.Paradoxes); got != exp.Paradoxes {
		errs = append(errs, fmt.Errorf("paradoxes: got %d, want %d", got, exp.Paradoxes))
	}
	if got := len(res.Report.Forks); got != exp.Forks {
		errs = append(errs, fmt.Errorf("forks: got %d, want %d", got, exp.Forks))
	}
	if got := len(res.Report.Relocations); got != exp.Relocations {
		errs = append(errs, fmt.Errorf("relocations: got %d, want %d", got, exp.Relocations))
	}

	if exp.Diagnostics != nil {
		var got []string
		for _, d := range res.Report.Diagnostics {
			got = append(got, string(d.Code))
		}
		if len(got) != len(exp.Diagnostics) {
			errs = append(errs, fmt.Errorf("diagnostics: got %v, want %v", got, exp.Diagnostics))
		} else {
			for i, code := range exp.Diagnostics {
				if got[i] != code {
					errs = append(errs, fmt.Errorf("diagnostic[%d]: got %s, want %s", i, got[i], code))
				}
			}
		}
	}

	return errs
}
