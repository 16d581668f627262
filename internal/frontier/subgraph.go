// Package frontier owns every piece of mutable state the search loop
// mutates across iterations: the accumulated result subgraph, the two
// pending relations awaiting expansion, the visited set, and the running
// occurrence map the ranker scores against. Per spec §3/§5 this state is
// touched only on the loop's own goroutine, after a node-expansion fan-out
// has joined — so none of these types take locks.
package frontier

import "github.com/narrativegraph/pathfinder/internal/rdf"

// Subgraph is the append-only accumulated result of the search: every
// tagged triple discovered so far, deduplicated on (s,p,o,type_df).
type Subgraph struct {
	rows []rdf.Tagged
	seen map[string]struct{}
}

// NewSubgraph returns an empty Subgraph.
func NewSubgraph() *Subgraph {
	return &Subgraph{seen: make(map[string]struct{})}
}

// Append adds triples discovered at iteration `it` under direction `dir`,
// skipping any already present under the dedupe key. Returns how many rows
// were actually added.
func (s *Subgraph) Append(it uint32, dir rdf.Direction, triples []rdf.Triple) int {
	added := 0
	for _, t := range triples {
		row := rdf.Tagged{Triple: t, Type: dir, Iteration: it}
		key := row.DedupeKey()
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		s.rows = append(s.rows, row)
		added++
	}
	return added
}

// Rows returns the accumulated tagged triples in insertion order.
func (s *Subgraph) Rows() []rdf.Tagged {
	return s.rows
}

// Len returns the number of rows currently in the subgraph.
func (s *Subgraph) Len() int {
	return len(s.rows)
}

// Info computes the subgraph-size / unique-event pair spec §3 requires per
// iteration: unique events are the union of ingoing subjects and outgoing
// objects (the entities the search has actually discovered, as opposed to
// the predicates and spec-outgoing metadata used to get there).
func (s *Subgraph) Info() (size int, uniqueEvents int) {
	unique := make(map[string]struct{})
	for _, row := range s.rows {
		switch row.Type {
		case rdf.Ingoing:
			unique[row.Subject] = struct{}{}
		case rdf.Outgoing:
			unique[row.Object] = struct{}{}
		}
	}
	return len(s.rows), len(unique)
}

// DiscoveredEntities returns the same set Info().uniqueEvents counts, as a
// slice — used by the metrics observer and the event index.
func (s *Subgraph) DiscoveredEntities() []string {
	unique := make(map[string]struct{})
	for _, row := range s.rows {
		switch row.Type {
		case rdf.Ingoing:
			unique[row.Subject] = struct{}{}
		case rdf.Outgoing:
			unique[row.Object] = struct{}{}
		}
	}
	out := make([]string, 0, len(unique))
	for e := range unique {
		out = append(out, e)
	}
	return out
}
