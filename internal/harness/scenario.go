package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative conformance test: a lawfile to execute plus
// expectations over the final reality and execution report.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Lawfile is the path to the .cue lawfile, relative to the scenario
	// file location.
	Lawfile string `yaml:"lawfile"`

	// Expect holds the assertions evaluated after execution.
	Expect Expectations `yaml:"expect,omitempty"`
}

// Expectations are assertions over the post-execution state. Zero counts
// assert zero occurrences; nil Entities/Absent assert nothing.
type Expectations struct {
	// Entities maps entity ids to their expected final property bags in
	// the home reality. Equality is full, not subset.
	Entities map[string]map[string]any `yaml:"entities,omitempty"`

	// Absent lists entity ids that must not exist in the home reality.
	Absent []string `yaml:"absent,omitempty"`

	// Paradoxes, Forks, and Relocations are expected report counts.
	Paradoxes   int `yaml:"paradoxes,omitempty"`
	Forks       int `yaml:"forks,omitempty"`
	Relocations int `yaml:"relocations,omitempty"`

	// Diagnostics lists the expected diagnostic codes, in order.
	Diagnostics []string `yaml:"diagnostics,omitempty"`
}

// LoadScenario reads a scenario from a YAML file. The lawfile path is
// resolved relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if sc.Lawfile == "" {
		return nil, fmt.Errorf("scenario %s: lawfile is required", path)
	}

	if !filepath.IsAbs(sc.Lawfile) {
		sc.Lawfile = filepath.Join(filepath.Dir(path), sc.Lawfile)
	}
	return &sc, nil
}
