// Package expansion implements node expansion (spec §4.6): for one
// candidate node, fetch its neighbourhood from the triple store, drop
// anything the narrative filter rejects, annotate and prune what's left
// through ordering, and hand back rows ready to fold into the frontier.
// It also owns the one place spec §5 allows concurrency: fanning the
// node-expansion pipeline out across the nodes selected for a single
// iteration, bounded by a worker pool modelled on
// internal/reflection.Engine.RunCycle's WaitGroup/error-channel shape.
package expansion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/narrativegraph/pathfinder/internal/frontier"
	"github.com/narrativegraph/pathfinder/internal/narrative"
	"github.com/narrativegraph/pathfinder/internal/ordering"
	"github.com/narrativegraph/pathfinder/internal/rdf"
	"github.com/narrativegraph/pathfinder/internal/searcherr"
	"go.uber.org/zap"
)

// Adapter is the subset of store.Adapter expansion needs — kept narrow so
// this package never imports store directly and stays testable against a
// fake.
type Adapter interface {
	Neighbours(ctx context.Context, node string, excludedPredicates []string) (ingoing, outgoing, specOutgoing []rdf.Triple, err error)
}

// Result is one node's contribution to an iteration: the triples that
// survived narrative filtering (destined for the subgraph regardless of
// whether they end up pending) and the rows ordering accepted for the
// frontier (destined for PendingIngoing/PendingOutgoing).
type Result struct {
	Node string

	Ingoing  []rdf.Triple
	Outgoing []rdf.Triple

	IngoingRows  []frontier.Row
	OutgoingRows []frontier.Row

	PathInfos []ordering.PathInfo

	// DiscardedCandidates lists the node IRIs the narrative filter
	// rejected this expansion, for logging/metrics only.
	DiscardedCandidates []string

	// Empty is true when the adapter reported AdapterNotFound: the node
	// has no triples at all. The loop still marks it visited.
	Empty bool
}

// Expander runs the adapter→filter→ordering pipeline for one node.
type Expander struct {
	adapter            Adapter
	filter             *narrative.Filter
	ordering           *ordering.Ordering
	excludedPredicates []string
	logger             *zap.Logger
}

// New returns an Expander. excludedPredicates is spec §6's
// `excluded_relations`, applied before the adapter's own post-filter
// pipeline ever runs.
func New(adapter Adapter, filter *narrative.Filter, ord *ordering.Ordering, excludedPredicates []string, logger *zap.Logger) *Expander {
	return &Expander{
		adapter:            adapter,
		filter:             filter,
		ordering:           ord,
		excludedPredicates: excludedPredicates,
		logger:             logger.Named("expansion"),
	}
}

// ExpandOne runs the pipeline for a single node.
func (e *Expander) ExpandOne(ctx context.Context, iteration uint32, node string) (Result, error) {
	ingoing, outgoing, specOutgoing, err := e.adapter.Neighbours(ctx, node, e.excludedPredicates)
	if err != nil {
		if adapterErr, ok := err.(*searcherr.AdapterError); ok && adapterErr.Kind == searcherr.AdapterNotFound {
			e.logger.Debug("node has no triples, treating as empty expansion", zap.String("node", node))
			return Result{Node: node, Empty: true}, nil
		}
		return Result{}, err
	}

	discarded := e.filter.Discard(ingoing, outgoing, specOutgoing)
	dropSet := make(map[string]struct{}, len(discarded))
	for _, d := range discarded {
		dropSet[d] = struct{}{}
	}

	keptIngoing := dropCandidates(ingoing, dropSet, rdf.Ingoing)
	keptOutgoing := dropCandidates(outgoing, dropSet, rdf.Outgoing)

	ingoingRows, ingoingInfos, err := e.ordering.Process(ctx, rdf.Ingoing, iteration, keptIngoing)
	if err != nil {
		return Result{}, err
	}
	outgoingRows, outgoingInfos, err := e.ordering.Process(ctx, rdf.Outgoing, iteration, keptOutgoing)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Node:                node,
		Ingoing:             keptIngoing,
		Outgoing:            keptOutgoing,
		IngoingRows:         ingoingRows,
		OutgoingRows:        outgoingRows,
		PathInfos:           append(ingoingInfos, outgoingInfos...),
		DiscardedCandidates: discarded,
	}, nil
}

// dropCandidates removes rows whose free endpoint (subject for ingoing,
// object for outgoing) was rejected by the narrative filter.
func dropCandidates(triples []rdf.Triple, drop map[string]struct{}, dir rdf.Direction) []rdf.Triple {
	if len(drop) == 0 {
		return triples
	}
	kept := triples[:0]
	for _, t := range triples {
		free := t.Object
		if dir == rdf.Ingoing {
			free = t.Subject
		}
		if _, ok := drop[free]; ok {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// ExpandMany fans the pipeline out across nodes, bounded to `workers`
// concurrent goroutines (workers<=1 or len(nodes)<=1 runs sequentially on
// the caller's own goroutine). Per spec §5 this is the only place the
// engine runs concurrently within one iteration; the merge order of the
// returned slice always matches the input node order regardless of which
// goroutine finished first, so the rest of the loop stays deterministic.
func (e *Expander) ExpandMany(ctx context.Context, iteration uint32, nodes []string, workers int) ([]Result, error) {
	results := make([]Result, len(nodes))

	if workers <= 1 || len(nodes) <= 1 {
		for i, node := range nodes {
			r, err := e.expandRecovered(ctx, iteration, node)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	errs := make([]error, len(nodes))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, node := range nodes {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, node string) {
			defer wg.Done()
			defer func() { <-sem }()
			r, err := e.expandRecovered(ctx, iteration, node)
			results[i] = r
			errs[i] = err
		}(i, node)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// workerRetries bounds how many times expandRecovered re-attempts a single
// node after a panic, mirroring the small bounded retry spec §5 requires
// for a transient failure at the fan-out boundary.
const workerRetries = 2

// expandRecovered runs ExpandOne for node, catching any panic raised while
// fetching or processing its neighbourhood and converting it into an
// AdapterError::Io, per spec §5. A recovered panic is retried with
// exponential backoff up to workerRetries times before it is surfaced as a
// real error to the caller.
func (e *Expander) expandRecovered(ctx context.Context, iteration uint32, node string) (Result, error) {
	interval := 100 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= workerRetries; attempt++ {
		result, err := e.runOneRecovered(ctx, iteration, node)
		if err == nil {
			return result, nil
		}
		lastErr = err
		adapterErr, ok := err.(*searcherr.AdapterError)
		if !ok || adapterErr.Kind != searcherr.AdapterIO {
			return Result{}, err
		}
		if attempt == workerRetries {
			break
		}
		e.logger.Warn("expansion worker failed, retrying",
			zap.String("node", node),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return Result{}, err
		case <-time.After(interval):
		}
		interval *= 2
	}
	return Result{}, lastErr
}

// runOneRecovered wraps a single ExpandOne call with recover() so a panic
// anywhere in the adapter/filter/ordering pipeline never brings down the
// rest of the fan-out.
func (e *Expander) runOneRecovered(ctx context.Context, iteration uint32, node string) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("expansion worker panicked, converting to adapter error",
				zap.String("node", node),
				zap.Any("recovered", rec))
			err = searcherr.IO(node, fmt.Errorf("panic: %v", rec))
		}
	}()
	return e.ExpandOne(ctx, iteration, node)
}
