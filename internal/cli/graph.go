package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/paracosm-io/paracosm/internal/causal"
)

// graphFlags holds the query filters for the graph command.
type graphFlags struct {
	timelines []string
	actors    []string
	ops       []string
	tags      []string
	order     string
	reverse   bool
	limit     int
	depth     int
}

// EventSummary is one event row in graph command output.
type EventSummary struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Op       string `json:"op"`
	Timeline string `json:"timeline"`
	Actor    string `json:"actor,omitempty"`
}

func summarize(events []*causal.Event) []EventSummary {
	out := make([]EventSummary, len(events))
	for i, ev := range events {
		out[i] = EventSummary{
			ID:       ev.ID,
			Key:      ev.Key,
			Op:       string(ev.Op),
			Timeline: ev.TimelineID,
			Actor:    ev.ActorID,
		}
	}
	return out
}

// NewGraphCommand creates the graph command: read-only analysis over an
// exported event batch.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &graphFlags{}

	cmd := &cobra.Command{
		Use:   "graph <events.yaml> <stats|query|ancestors|descendants|merge-base> [ids...]",
		Short: "Analyze a causal event batch",
		Long: `Build a causal graph from an exported YAML event batch and run one
analysis over it:

  stats                  aggregate measurements (depth, branch points)
  query                  filter and order events (see --timeline etc.)
  ancestors <id>         transitive causes of an event
  descendants <id>       transitive effects of an event
  merge-base <a> <b>     nearest common ancestor of two events`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(rootOpts, flags, args, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&flags.timelines, "timeline", nil, "filter by timeline id")
	cmd.Flags().StringSliceVar(&flags.actors, "actor", nil, "filter by actor id")
	cmd.Flags().StringSliceVar(&flags.ops, "op", nil, "filter by operation kind")
	cmd.Flags().StringSliceVar(&flags.tags, "tag", nil, "filter by metadata tag")
	cmd.Flags().StringVar(&flags.order, "order", "timestamp", "result order (timestamp|causal)")
	cmd.Flags().BoolVar(&flags.reverse, "reverse", false, "reverse the result order")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "truncate results (0 is unlimited)")
	cmd.Flags().IntVar(&flags.depth, "depth", 0, "bound traversal depth (0 is unbounded)")

	return cmd
}

func runGraph(opts *RootOptions, flags *graphFlags, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	events, err := LoadEvents(args[0])
	if err != nil {
		formatter.Fail("E_EVENTS", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "loading events", Err: err}
	}
	g := causal.Build(events)
	formatter.VerboseLog("indexed %d of %d events", g.Len(), len(events))

	switch analysis := args[1]; analysis {
	case "stats":
		return outputStats(formatter, g)
	case "query":
		return outputQuery(formatter, g, flags)
	case "ancestors", "descendants":
		if len(args) < 3 {
			return usageError(formatter, analysis+" requires an event id")
		}
		var result []*causal.Event
		if analysis == "ancestors" {
			result = g.Ancestors(args[2], flags.depth)
		} else {
			result = g.Descendants(args[2], flags.depth)
		}
		return outputEvents(formatter, result)
	case "merge-base":
		if len(args) < 4 {
			return usageError(formatter, "merge-base requires two event ids")
		}
		return outputMergeBase(formatter, g, args[2], args[3])
	default:
		return usageError(formatter, fmt.Sprintf("unknown analysis %q", analysis))
	}
}

func usageError(f *OutputFormatter, msg string) error {
	f.Fail("E_USAGE", msg, nil)
	return &ExitError{Code: ExitCommandError, Message: msg}
}

func outputStats(f *OutputFormatter, g *causal.Graph) error {
	stats := g.Stats()
	if f.Format == "json" {
		return f.Success(stats)
	}

	fmt.Fprintf(f.Writer, "events: %d\n", stats.TotalEvents)
	for _, tl := range sortedKeys(stats.EventsPerTimeline) {
		fmt.Fprintf(f.Writer, "  %s: %d\n", tl, stats.EventsPerTimeline[tl])
	}
	fmt.Fprintf(f.Writer, "branch points: %d\n", stats.BranchPoints)
	fmt.Fprintf(f.Writer, "max depth: %d\n", stats.MaxDepth)
	fmt.Fprintf(f.Writer, "avg depth: %.2f\n", stats.AvgDepth)
	return nil
}

func outputQuery(f *OutputFormatter, g *causal.Graph, flags *graphFlags) error {
	filter := causal.Filter{
		Timelines: flags.timelines,
		Actors:    flags.actors,
		Tags:      flags.tags,
		Reverse:   flags.reverse,
		Limit:     flags.limit,
	}
	for _, op := range flags.ops {
		filter.Ops = append(filter.Ops, causal.Op(op))
	}
	switch flags.order {
	case "timestamp":
		filter.Order = causal.OrderTimestamp
	case "causal":
		filter.Order = causal.OrderCausal
	default:
		return usageError(f, fmt.Sprintf("unknown order %q (want timestamp or causal)", flags.order))
	}

	result, err := g.Query(filter)
	if err != nil {
		f.Fail("E_CYCLE", err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: "querying graph", Err: err}
	}
	return outputEvents(f, result)
}

func outputEvents(f *OutputFormatter, events []*causal.Event) error {
	if f.Format == "json" {
		return f.Success(summarize(events))
	}
	for _, ev := range events {
		fmt.Fprintf(f.Writer, "%s  %s %s  [%s]\n", ev.ID, ev.Op, ev.Key, ev.TimelineID)
	}
	fmt.Fprintf(f.Writer, "%d event(s)\n", len(events))
	return nil
}

func outputMergeBase(f *OutputFormatter, g *causal.Graph, a, b string) error {
	base, ok := g.MergeBase(a, b)
	if !ok {
		if f.Format == "json" {
			return f.Success(map[string]any{"found": false})
		}
		fmt.Fprintln(f.Writer, "no common ancestor")
		return nil
	}
	if f.Format == "json" {
		return f.Success(map[string]any{"found": true, "base": summarize([]*causal.Event{base})[0]})
	}
	fmt.Fprintf(f.Writer, "%s  %s %s  [%s]\n", base.ID, base.Op, base.Key, base.TimelineID)
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
