// Package store implements the triple-store Adapter (spec §4.1): the one
// seam between the search engine and the underlying compressed triple
// store. Two transports are provided — HDTAdapter, an in-process client
// over a Dgraph instance loaded from an HDT-style dump, and RemoteAdapter,
// an HTTP client for a triple endpoint outside the process — plus a shared
// post-filter pipeline both run their results through before the rest of
// the engine ever sees a triple.
package store

import (
	"context"

	"github.com/narrativegraph/pathfinder/internal/rdf"
)

// Adapter is the seam spec §4.1 describes: everything the search loop
// knows about the triple store goes through these two calls.
type Adapter interface {
	// Neighbours returns the ingoing, outgoing and spec-outgoing triples
	// for node. excludedPredicates are dropped before the filter pipeline
	// even runs — spec §6's `excluded_relations`.
	Neighbours(ctx context.Context, node string, excludedPredicates []string) (ingoing, outgoing, specOutgoing []rdf.Triple, err error)
	// Superclass resolves the set of rdfs:subClassOf ancestors of node's
	// rdf:type value(s), walking up to owl:Thing. A node with no rdf:type
	// statement resolves to its own IRI.
	Superclass(ctx context.Context, node string) ([]string, error)
}
