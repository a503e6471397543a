package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paracosm-io/paracosm/internal/causal"
	"github.com/paracosm-io/paracosm/internal/prop"
)

// eventDoc is the YAML shape of one exported event. External stores dump
// batches in this format for offline analysis.
type eventDoc struct {
	ID        string    `yaml:"id"`
	At        time.Time `yaml:"at"`
	Key       string    `yaml:"key"`
	Op        string    `yaml:"op"`
	Value     any       `yaml:"value,omitempty"`
	PrevValue any       `yaml:"prev_value,omitempty"`
	CausedBy  []string  `yaml:"caused_by,omitempty"`
	Timeline  string    `yaml:"timeline"`
	Actor     string    `yaml:"actor,omitempty"`
	Origin    string    `yaml:"origin,omitempty"`
	Tags      []string  `yaml:"tags,omitempty"`
}

type eventBatch struct {
	Events []eventDoc `yaml:"events"`
}

// LoadEvents reads an exported event batch from a YAML file.
func LoadEvents(path string) ([]*causal.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading events %s: %w", path, err)
	}

	var batch eventBatch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parsing events %s: %w", path, err)
	}

	events := make([]*causal.Event, 0, len(batch.Events))
	for i, doc := range batch.Events {
		if doc.ID == "" {
			return nil, fmt.Errorf("events[%d]: id is required", i)
		}

		ev := &causal.Event{
			ID:         doc.ID,
			Timestamp:  doc.At,
			Key:        doc.Key,
			Op:         causal.Op(doc.Op),
			CausedBy:   doc.CausedBy,
			TimelineID: doc.Timeline,
			ActorID:    doc.Actor,
		}
		if doc.Value != nil {
			v, err := prop.FromAny(doc.Value)
			if err != nil {
				return nil, fmt.Errorf("events[%d] value: %w", i, err)
			}
			ev.Value = v
		}
		if doc.PrevValue != nil {
			v, err := prop.FromAny(doc.PrevValue)
			if err != nil {
				return nil, fmt.Errorf("events[%d] prev_value: %w", i, err)
			}
			ev.PrevValue = v
		}
		if doc.Origin != "" || len(doc.Tags) > 0 {
			ev.Meta = &causal.Meta{Origin: doc.Origin, Tags: doc.Tags}
		}
		events = append(events, ev)
	}
	return events, nil
}
