// Package ordering implements the Ordering component (spec §4.3): it
// stamps newly discovered triples with the superclass(es) of their subject
// and object, and — when domain/range mode is enabled — drops triples
// whose free endpoint cannot be an instance of one of the configured
// target types before they ever reach the pending frontier.
package ordering

import (
	"context"

	"github.com/narrativegraph/pathfinder/internal/frontier"
	"github.com/narrativegraph/pathfinder/internal/rdf"
)

// SuperclassResolver resolves the superclass(es) of a node. A node can
// yield more than one ancestor when it carries multiple rdf:type
// statements, each with its own rdfs:subClassOf chain — spec §4.3's
// tie-break ("any intersection with target types retains it") only makes
// sense against such a set.
type SuperclassResolver interface {
	Superclass(ctx context.Context, node string) ([]string, error)
}

// Config configures one Ordering instance.
type Config struct {
	// DomainRange enables endpoint pruning against TargetTypes.
	DomainRange bool
	// TargetTypes are the target-type IRIs from the run's `rdf_type`
	// config (the second element of each (label, IRI) pair).
	TargetTypes []string
	// DemotedPredicates get priority 2 (spec §3) instead of the default
	// 3 when none of their endpoint's superclasses match TargetTypes.
	// Empty by default — no predicate is demoted unless configured.
	DemotedPredicates []string
}

// PathInfo is the running per-predicate info row spec §4.3 step 3
// describes: how many triples were seen for a predicate at an iteration,
// and how many matched each target type.
type PathInfo struct {
	Path      string         `json:"path"`
	Iteration uint32         `json:"iteration"`
	Total     int            `json:"total_seen"`
	PerClass  map[string]int `json:"per_class,omitempty"`
}

// Ordering annotates and prunes candidate rows for one search run.
type Ordering struct {
	cfg      Config
	resolver SuperclassResolver
	targets  map[string]struct{}
	demoted  map[string]struct{}
}

// New returns an Ordering bound to resolver.
func New(cfg Config, resolver SuperclassResolver) *Ordering {
	targets := make(map[string]struct{}, len(cfg.TargetTypes))
	for _, t := range cfg.TargetTypes {
		targets[t] = struct{}{}
	}
	demoted := make(map[string]struct{}, len(cfg.DemotedPredicates))
	for _, p := range cfg.DemotedPredicates {
		demoted[p] = struct{}{}
	}
	return &Ordering{cfg: cfg, resolver: resolver, targets: targets, demoted: demoted}
}

// Process annotates triples discovered under direction dir at the given
// iteration, applies domain/range pruning if enabled, and returns the
// retained pending rows plus one PathInfo per distinct predicate seen.
func (o *Ordering) Process(ctx context.Context, dir rdf.Direction, iteration uint32, triples []rdf.Triple) ([]frontier.Row, []PathInfo, error) {
	totals := make(map[string]int)
	perClass := make(map[string]map[string]int)
	var kept []frontier.Row

	for _, t := range triples {
		subjSuper, err := o.resolver.Superclass(ctx, t.Subject)
		if err != nil {
			return nil, nil, err
		}
		objSuper, err := o.resolver.Superclass(ctx, t.Object)
		if err != nil {
			return nil, nil, err
		}

		totals[t.Predicate]++

		free := objSuper
		if dir == rdf.Ingoing {
			free = subjSuper
		}
		matchedClass, matched := o.matchTarget(free)
		if matched {
			classes := perClass[t.Predicate]
			if classes == nil {
				classes = make(map[string]int)
				perClass[t.Predicate] = classes
			}
			classes[matchedClass]++
		}

		if o.cfg.DomainRange && !matched {
			continue
		}

		kept = append(kept, frontier.Row{
			Subject:           t.Subject,
			Predicate:         t.Predicate,
			Object:            t.Object,
			SubjectSuperclass: firstOrEmpty(subjSuper),
			ObjectSuperclass:  firstOrEmpty(objSuper),
			Priority:          o.priority(matched, t.Predicate),
		})
	}

	infos := make([]PathInfo, 0, len(totals))
	for pred, total := range totals {
		infos = append(infos, PathInfo{
			Path:      pred,
			Iteration: iteration,
			Total:     total,
			PerClass:  perClass[pred],
		})
	}
	return kept, infos, nil
}

// matchTarget reports whether any of the node's resolved superclasses
// intersects the configured target types, and if so which one matched
// first (for the per-class info breakdown).
func (o *Ordering) matchTarget(superclasses []string) (string, bool) {
	if len(o.targets) == 0 {
		return "", false
	}
	for _, s := range superclasses {
		if _, ok := o.targets[s]; ok {
			return s, true
		}
	}
	return "", false
}

// priority derives the path-key priority digit (spec §3): 1 when the
// row's free endpoint matched one of the target types, 2 when the
// predicate is in the configured demoted set, 3 otherwise.
func (o *Ordering) priority(matchedTarget bool, predicate string) rdf.Priority {
	if matchedTarget {
		return rdf.PriorityTarget
	}
	if _, ok := o.demoted[predicate]; ok {
		return rdf.PriorityDemoted
	}
	return rdf.PriorityOrdinary
}

// firstOrEmpty picks one representative ancestor out of a resolved
// superclass set for the row's display field. matchTarget above already
// tested the full set for target-type intersection, so narrowing to one
// IRI here is purely cosmetic and never changes pruning or priority.
func firstOrEmpty(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
