package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/dgo/v240"
	"github.com/dgraph-io/dgo/v240/protos/api"
	"github.com/narrativegraph/pathfinder/internal/rdf"
	"github.com/narrativegraph/pathfinder/internal/searcherr"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// HDTConfig configures HDTAdapter's connection to the in-process
// compressed triple store.
type HDTConfig struct {
	Address        string
	MaxRetries     int
	RetryInterval  time.Duration
	RequestTimeout time.Duration

	// RDFType and SubClassOf name the two predicates Superclass walks.
	// OwlThing is the root at which the walk stops.
	RDFType    string
	SubClassOf string
	OwlThing   string

	// MetaPredicates are the predicates fetched as a node's spec-outgoing
	// set (spec §3) — rdf:type plus whatever date predicates the active
	// dataset config names.
	MetaPredicates []string

	PostFilter PostFilterConfig
}

// HDTAdapter is the in-process Adapter, backed by a Dgraph instance
// holding a dataset loaded from an HDT dump. Connection handling —
// retry-with-backoff dial, pooled *grpc.ClientConn, zap logging on every
// retry — is adapted from internal/graph/client.go's NewClient.
type HDTAdapter struct {
	conn   *grpc.ClientConn
	dg     *dgo.Dgraph
	cfg    HDTConfig
	filter postFilter
	cache  *SuperclassCache
	logger *zap.Logger
}

// NewHDTAdapter dials addr with retry-with-backoff and returns a ready
// HDTAdapter. cache may be nil to disable superclass memoization.
func NewHDTAdapter(ctx context.Context, cfg HDTConfig, cache *SuperclassCache, logger *zap.Logger) (*HDTAdapter, error) {
	var conn *grpc.ClientConn
	var err error

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		conn, err = grpc.DialContext(ctx, cfg.Address,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithBlock(),
		)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to triple store, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		time.Sleep(cfg.RetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("store: connect after %d attempts: %w", cfg.MaxRetries, err)
	}

	return &HDTAdapter{
		conn:   conn,
		dg:     dgo.NewDgraphClient(api.NewDgraphClient(conn)),
		cfg:    cfg,
		filter: newPostFilter(cfg.PostFilter),
		cache:  cache,
		logger: logger.Named("hdt_adapter"),
	}, nil
}

// Close releases the underlying connection.
func (a *HDTAdapter) Close() error {
	return a.conn.Close()
}

type triplesResult struct {
	Rows []struct {
		Iri  string `json:"iri"`
		Pred string `json:"pred"`
		Val  string `json:"val"`
	} `json:"rows"`
}

// Neighbours satisfies Adapter by issuing three pattern queries against
// the Dgraph-backed store: object-bound for ingoing (via the `~pred`
// reverse edge every relationship predicate is declared with), subject-
// bound for outgoing, and subject-bound restricted to MetaPredicates for
// spec-outgoing.
func (a *HDTAdapter) Neighbours(ctx context.Context, node string, excludedPredicates []string) ([]rdf.Triple, []rdf.Triple, []rdf.Triple, error) {
	excluded := toSet(excludedPredicates)

	ingoingRaw, err := a.queryByObject(ctx, node)
	if err != nil {
		return nil, nil, nil, err
	}
	outgoingRaw, err := a.querySubject(ctx, node, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	specRaw, err := a.querySubject(ctx, node, a.cfg.MetaPredicates)
	if err != nil {
		return nil, nil, nil, err
	}

	ingoing := a.filter.Apply(dropExcluded(ingoingRaw, excluded))
	outgoing := a.filter.Apply(dropExcluded(outgoingRaw, excluded))
	specOutgoing := a.filter.Apply(specRaw)

	if len(ingoing) == 0 && len(outgoing) == 0 && len(specOutgoing) == 0 {
		return nil, nil, nil, searcherr.NotFound(node)
	}
	return ingoing, outgoing, specOutgoing, nil
}

// querySubject fetches (node, p, o) triples, optionally restricted to a
// fixed predicate set.
func (a *HDTAdapter) querySubject(ctx context.Context, node string, predicates []string) ([]rdf.Triple, error) {
	q := `query Outgoing($node: string) {
		rows(func: eq(iri, $node)) {
			iri
			expand(_all_) {
				pred: iri
			}
		}
	}`
	resp, err := a.query(ctx, q, map[string]string{"$node": node})
	if err != nil {
		return nil, searcherr.IO(node, err)
	}
	triples := resp.toTriples(node, rdf.SpecOutgoing)
	if len(predicates) > 0 {
		allow := toSet(predicates)
		triples = filterByPredicate(triples, allow, true)
	}
	return triples, nil
}

// queryByObject fetches (s, p, node) triples by walking the `~pred`
// reverse edges declared in the store's schema for every relationship
// predicate.
func (a *HDTAdapter) queryByObject(ctx context.Context, node string) ([]rdf.Triple, error) {
	q := `query Ingoing($node: string) {
		rows(func: eq(iri, $node)) {
			~pred {
				iri
			}
		}
	}`
	resp, err := a.query(ctx, q, map[string]string{"$node": node})
	if err != nil {
		return nil, searcherr.IO(node, err)
	}
	return resp.toTriples(node, rdf.Ingoing), nil
}

func (a *HDTAdapter) query(ctx context.Context, q string, vars map[string]string) (triplesResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	resp, err := a.dg.NewReadOnlyTxn().QueryWithVars(ctx, q, vars)
	if err != nil {
		return triplesResult{}, err
	}
	var out triplesResult
	if err := json.Unmarshal(resp.Json, &out); err != nil {
		return triplesResult{}, err
	}
	return out, nil
}

func (r triplesResult) toTriples(node string, dir rdf.Direction) []rdf.Triple {
	out := make([]rdf.Triple, 0, len(r.Rows))
	for _, row := range r.Rows {
		switch dir {
		case rdf.Ingoing:
			out = append(out, rdf.Triple{Subject: row.Iri, Predicate: row.Pred, Object: node})
		default:
			out = append(out, rdf.Triple{Subject: node, Predicate: row.Pred, Object: row.Iri})
		}
	}
	return out
}

// Superclass walks rdfs:subClassOf from each of node's rdf:type values up
// to owl:Thing, memoizing the result set in cache when present. Per
// spec.md's definition ("most general ancestor under rdfs:subClassOf short
// of owl:Thing"), each type contributes exactly one ancestor IRI — the
// last one reached before owl:Thing — never owl:Thing itself. A cycle in
// the subClassOf chain is broken by refusing to revisit a class already on
// the current walk and surfacing searcherr.Cycle instead of looping
// forever.
func (a *HDTAdapter) Superclass(ctx context.Context, node string) ([]string, error) {
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, node); ok {
			return cached, nil
		}
	}

	types, err := a.typesOf(ctx, node)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return []string{node}, nil
	}

	seen := make(map[string]struct{}, len(types))
	var ancestors []string
	for _, t := range types {
		top, err := a.walkUp(ctx, t, make(map[string]struct{}))
		if err != nil {
			return nil, err
		}
		if _, ok := seen[top]; ok {
			continue
		}
		seen[top] = struct{}{}
		ancestors = append(ancestors, top)
	}

	a.logger.Debug("resolved superclasses", zap.String("node", node), zap.String("ancestors", joinIRIs(ancestors)))

	if a.cache != nil {
		a.cache.Set(ctx, node, ancestors)
	}
	return ancestors, nil
}

func (a *HDTAdapter) typesOf(ctx context.Context, node string) ([]string, error) {
	q := `query Types($node: string) {
		rows(func: eq(iri, $node)) {
			rdf_type { iri }
		}
	}`
	resp, err := a.query(ctx, q, map[string]string{"$node": node})
	if err != nil {
		return nil, searcherr.IO(node, err)
	}
	types := make([]string, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		types = append(types, row.Iri)
	}
	return types, nil
}

// walkUp mirrors hdt_interface.py's get_superclass: follow class's first
// (and, in practice, only) rdfs:subClassOf triple one hop at a time. A
// class with no subClassOf triple, or whose only parent is owl:Thing, is
// itself the topmost pre-owl:Thing ancestor and is returned as-is —
// owl:Thing is never returned.
func (a *HDTAdapter) walkUp(ctx context.Context, class string, onPath map[string]struct{}) (string, error) {
	if _, ok := onPath[class]; ok {
		return "", searcherr.Cycle(class)
	}
	onPath[class] = struct{}{}

	q := `query Super($class: string) {
		rows(func: eq(iri, $class)) {
			sub_class_of { iri }
		}
	}`
	resp, err := a.query(ctx, q, map[string]string{"$class": class})
	if err != nil {
		return "", searcherr.IO(class, err)
	}
	if len(resp.Rows) == 0 {
		return class, nil
	}

	parent := resp.Rows[0].Iri
	if parent == a.cfg.OwlThing {
		return class, nil
	}
	return a.walkUp(ctx, parent, onPath)
}

func toSet(vals []string) map[string]struct{} {
	s := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func dropExcluded(triples []rdf.Triple, excluded map[string]struct{}) []rdf.Triple {
	if len(excluded) == 0 {
		return triples
	}
	kept := triples[:0]
	for _, t := range triples {
		if _, ok := excluded[t.Predicate]; ok {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

func filterByPredicate(triples []rdf.Triple, allow map[string]struct{}, keep bool) []rdf.Triple {
	kept := triples[:0]
	for _, t := range triples {
		_, ok := allow[t.Predicate]
		if ok == keep {
			kept = append(kept, t)
		}
	}
	return kept
}
