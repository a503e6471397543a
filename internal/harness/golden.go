package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/paracosm-io/paracosm/internal/prop"
)

// TraceSnapshot flattens an execution into the canonical-JSON shape
// pinned by golden files. Timestamps are deliberately excluded: the
// snapshot pins WHAT happened and in what order, not when the injected
// clock ticked.
func TraceSnapshot(res *Result) ([]byte, error) {
	steps := make([]any, 0, len(res.Engine.Trace()))
	for _, step := range res.Engine.Trace() {
		m := map[string]any{
			"narrative": step.Narrative,
			"entity":    step.Operator.Entity(),
		}
		if step.Before != nil {
			m["before"] = step.Before.Props
		}
		if step.After != nil {
			m["after"] = step.After.Props
		}
		steps = append(steps, m)
	}

	report := map[string]any{
		"steps":       res.Report.Steps,
		"forks":       len(res.Report.Forks),
		"relocations": len(res.Report.Relocations),
		"paradoxes":   len(res.Report.Paradoxes),
		"diagnostics": len(res.Report.Diagnostics),
	}

	doc, err := prop.FromAny(map[string]any{
		"scenario": res.Scenario.Name,
		"steps":    steps,
		"report":   report,
	})
	if err != nil {
		return nil, err
	}
	return prop.MarshalCanonical(doc)
}

// RunWithGolden executes a scenario, verifies its expectations, and
// compares the trace snapshot against testdata/golden/<name>.golden.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) error {
	t.Helper()

	res, err := Run(sc)
	if err != nil {
		return err
	}
	for _, verr := range Verify(res) {
		t.Error(verr)
	}

	data, err := TraceSnapshot(res)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, data)
	return nil
}
