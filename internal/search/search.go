package search

import (
	"context"
	"strings"

	"github.com/narrativegraph/pathfinder/internal/expansion"
	"github.com/narrativegraph/pathfinder/internal/frontier"
	"github.com/narrativegraph/pathfinder/internal/metrics"
	"github.com/narrativegraph/pathfinder/internal/ranker"
	"github.com/narrativegraph/pathfinder/internal/rdf"
	"github.com/narrativegraph/pathfinder/internal/selector"
	"go.uber.org/zap"
)

// Result is everything Run produces: the accumulated subgraph and
// bookkeeping artifacts spec §3 requires, plus why the run stopped.
type Result struct {
	Subgraph      *frontier.Subgraph
	Records       []frontier.ExpansionRecord
	SubgraphInfos map[uint32]frontier.SubgraphInfo
	NodesExpanded map[uint32][]string
	PathToStart   map[string][]rdf.Triple

	Exit          ExitReason
	IterationsRun int

	MetricsSnapshots []metrics.Snapshot
	MetricsMetadata  metrics.Metadata
}

// Framework drives the search loop described in spec §4.7, owning every
// piece of mutable frontier state and composing the already-built ranking,
// selection and expansion components.
type Framework struct {
	cfg      Config
	expander *expansion.Expander
	rank     *ranker.Ranker
	sel      *selector.Selector
	sink     EventSink
	tracker  *metrics.Tracker
	logger   *zap.Logger

	visited    *frontier.Visited
	subgraph   *frontier.Subgraph
	pendingIn  *frontier.PendingIngoing
	pendingOut *frontier.PendingOutgoing
	occ        *frontier.Occurrence

	pathToStart map[string][]rdf.Triple

	records       []frontier.ExpansionRecord
	subgraphInfos map[uint32]frontier.SubgraphInfo
	nodesExpanded map[uint32][]string

	// toExpandKey is the path key chosen at the end of the previous
	// iteration to drive this one's candidate selection; empty before the
	// first iteration, which always starts from cfg.Start.
	toExpandKey string
}

// New validates cfg and returns a Framework ready to Run. expander, rank
// and sel must already be constructed and wired to the same run's
// narrative/ordering/store configuration; tracker and sink may be nil.
func New(cfg Config, expander *expansion.Expander, rank *ranker.Ranker, sel *selector.Selector, sink EventSink, tracker *metrics.Tracker, logger *zap.Logger) (*Framework, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = NoopSink{}
	}
	return &Framework{
		cfg:           cfg,
		expander:      expander,
		rank:          rank,
		sel:           sel,
		sink:          sink,
		tracker:       tracker,
		logger:        logger.Named("search"),
		visited:       frontier.NewVisited(),
		subgraph:      frontier.NewSubgraph(),
		pendingIn:     frontier.NewPendingIngoing(),
		pendingOut:    frontier.NewPendingOutgoing(),
		occ:           frontier.NewOccurrence(),
		pathToStart:   make(map[string][]rdf.Triple),
		subgraphInfos: make(map[uint32]frontier.SubgraphInfo),
		nodesExpanded: make(map[uint32][]string),
	}, nil
}

// Run drives up to cfg.Iterations iterations, stopping early on
// ExitTargetFound or ExitNoMorePaths per the three-way priority spec §4.7
// describes: a target found this iteration always wins, even over a
// simultaneously non-empty next path; only once neither of those fires does
// the loop continue to the next iteration or, having exhausted its budget,
// report ExitBudgetExhausted.
func (f *Framework) Run(ctx context.Context) (Result, error) {
	exit := ExitBudgetExhausted
	ran := 0

	for it := uint32(1); int(it) <= f.cfg.Iterations; it++ {
		reason, terminal, err := f.step(ctx, it)
		if err != nil {
			return Result{}, err
		}
		ran++
		if terminal {
			exit = reason
			break
		}
	}

	result := Result{
		Subgraph:      f.subgraph,
		Records:       f.records,
		SubgraphInfos: f.subgraphInfos,
		NodesExpanded: f.nodesExpanded,
		PathToStart:   f.pathToStart,
		Exit:          exit,
		IterationsRun: ran,
	}
	if f.tracker != nil {
		result.MetricsSnapshots = f.tracker.Snapshots()
		result.MetricsMetadata = f.tracker.Metadata()
	}
	return result, nil
}

// step runs one iteration: select candidates from the previously chosen
// path (or cfg.Start on the first call), expand them, fold the results into
// the frontier, rank the next path, and report whether the loop should
// stop. terminal is true only on ExitTargetFound or ExitNoMorePaths.
func (f *Framework) step(ctx context.Context, iteration uint32) (reason ExitReason, terminal bool, err error) {
	candidates := f.selectCandidates()

	var toSelect []string
	for _, c := range candidates {
		if !f.visited.Has(c) {
			toSelect = append(toSelect, c)
		}
	}

	selected := f.sel.Select(toSelect)
	f.nodesExpanded[iteration] = selected

	results, err := f.expander.ExpandMany(ctx, iteration, selected, f.cfg.ParallelismWorkers)
	if err != nil {
		return "", false, err
	}

	foundTarget := false
	for _, r := range results {
		f.visited.Add(r.Node)
		if r.Empty {
			continue
		}

		f.subgraph.Append(iteration, rdf.Ingoing, r.Ingoing)
		f.subgraph.Append(iteration, rdf.Outgoing, r.Outgoing)

		f.pendingIn.Add(r.IngoingRows...)
		f.pendingOut.Add(r.OutgoingRows...)

		for _, row := range r.IngoingRows {
			f.occ.Inc(f.occurrenceKey(rdf.Ingoing, row))
			if f.updatePathIngoing(row) {
				foundTarget = true
			}
		}
		for _, row := range r.OutgoingRows {
			f.occ.Inc(f.occurrenceKey(rdf.Outgoing, row))
			if f.updatePathOutgoing(row) {
				foundTarget = true
			}
		}
	}

	nextKey, score, ok := f.rank.Select(f.occ.All())
	if ok {
		if f.sel.Mode() == selector.Random {
			f.occ.Decrement(nextKey)
		} else {
			f.occ.Remove(nextKey)
		}
		f.pendingIn.Purge(f.visited)
		f.pendingOut.Purge(f.visited)
	}

	size, unique := f.subgraph.Info()
	f.subgraphInfos[iteration] = frontier.SubgraphInfo{SubgraphNbEvent: size, SubgraphNbEventUnique: unique}

	if f.tracker != nil {
		f.tracker.Update(int(iteration), f.subgraph.DiscoveredEntities())
	}

	event := Event{
		RunID:          f.cfg.RunID,
		Iteration:      iteration,
		NodesExpanded:  selected,
		PathChosen:     nextKey,
		Score:          score,
		SubgraphSize:   size,
		UniqueEntities: unique,
	}

	// Target-found takes priority over every other outcome, matching the
	// original's __call__ tail: `if found_node: break` runs before the
	// check for whether a next path exists, even when one does.
	if f.cfg.TargetNode != "" && foundTarget {
		event.Exit = string(ExitTargetFound)
		f.sink.Publish(ctx, event)
		return ExitTargetFound, true, nil
	}
	if !ok {
		event.Exit = string(ExitNoMorePaths)
		f.sink.Publish(ctx, event)
		return ExitNoMorePaths, true, nil
	}

	f.records = append(f.records, frontier.ExpansionRecord{
		Iteration:    iteration,
		PathExpanded: nextKey,
		NodeExpanded: selected,
		Score:        score,
	})
	f.toExpandKey = nextKey

	f.sink.Publish(ctx, event)
	return "", false, nil
}

// selectCandidates decodes the path key chosen at the end of the previous
// iteration into the set of nodes it would expand to next, exactly
// mirroring original_source/src/framework.py's `_select_nodes_to_expand`
// string manipulation. Before any iteration has run, toExpandKey is empty
// and the only candidate is the configured start node.
func (f *Framework) selectCandidates() []string {
	if f.toExpandKey == "" {
		return []string{f.cfg.Start}
	}

	kind, predicate, fixed := decodePathKey(f.toExpandKey)
	switch kind {
	case "ingoing":
		return f.pendingIn.Candidates(predicate, fixed)
	case "outgoing":
		return f.pendingOut.Candidates(fixed, predicate)
	default:
		return unionDedupe(
			f.pendingIn.CandidatesForPredicate(predicate),
			f.pendingOut.CandidatesForPredicate(predicate),
		)
	}
}

// occurrenceKey builds the occurrence-map key for row under direction dir,
// choosing predicate-only or predicate+endpoint shape to match the
// ranker's configured rule.
func (f *Framework) occurrenceKey(dir rdf.Direction, row frontier.Row) string {
	if !f.rank.Rule().ObjectKeyed() {
		return rdf.PredicateKey(row.Priority, row.Predicate)
	}
	fixed := row.Object
	if dir == rdf.Outgoing {
		fixed = row.Subject
	}
	return rdf.EndpointKey(row.Priority, dir, row.Predicate, fixed)
}

// updatePathIngoing records the provenance of row.Subject (the newly
// reached node) as row prepended to row.Object's existing path, mirroring
// `_update_path`'s ingoing branch. Returns whether row.Subject is the
// configured target.
func (f *Framework) updatePathIngoing(row frontier.Row) bool {
	previous := f.pathToStart[row.Object]
	triple := rdf.Triple{Subject: row.Subject, Predicate: row.Predicate, Object: row.Object}
	f.pathToStart[row.Subject] = prepend(triple, previous)
	return row.Subject == f.cfg.TargetNode
}

// updatePathOutgoing is updatePathIngoing's mirror image for outgoing rows.
func (f *Framework) updatePathOutgoing(row frontier.Row) bool {
	previous := f.pathToStart[row.Subject]
	triple := rdf.Triple{Subject: row.Subject, Predicate: row.Predicate, Object: row.Object}
	f.pathToStart[row.Object] = prepend(triple, previous)
	return row.Object == f.cfg.TargetNode
}

func prepend(t rdf.Triple, rest []rdf.Triple) []rdf.Triple {
	path := make([]rdf.Triple, 0, len(rest)+1)
	path = append(path, t)
	path = append(path, rest...)
	return path
}

// decodePathKey splits a path key produced by rdf.PredicateKey or
// rdf.EndpointKey back into its shape and components: a priority digit
// prefix ("1-", "2-", or "3-") followed either by a bare predicate, or by
// "ingoing-<predicate>;<fixed>", or by "outgoing-<fixed>;<predicate>".
// There is no ambiguity between the two endpoint shapes: EndpointKey always
// places "ingoing-"/"outgoing-" immediately after the priority prefix.
func decodePathKey(key string) (kind, predicate, fixed string) {
	rest := key
	if len(rest) > 1 && rest[1] == '-' {
		rest = rest[2:]
	}

	switch {
	case strings.HasPrefix(rest, "ingoing-"):
		body := strings.TrimPrefix(rest, "ingoing-")
		parts := strings.SplitN(body, ";", 2)
		if len(parts) != 2 {
			return "ingoing", parts[0], ""
		}
		return "ingoing", parts[0], parts[1]
	case strings.HasPrefix(rest, "outgoing-"):
		body := strings.TrimPrefix(rest, "outgoing-")
		parts := strings.SplitN(body, ";", 2)
		if len(parts) != 2 {
			return "outgoing", "", parts[0]
		}
		return "outgoing", parts[1], parts[0]
	default:
		return "predicate", rest, ""
	}
}

func unionDedupe(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range [][]string{a, b} {
		for _, v := range s {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
