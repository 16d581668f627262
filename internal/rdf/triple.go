// Package rdf defines the wire-level data model shared by every component
// of the search engine: triples, tagged triples, and the path-key encoding
// the ranker and occurrence map operate on.
package rdf

import "fmt"

// Direction records which side of a triple the node under expansion sits
// on, or marks a triple fetched purely for ordering/filtering purposes.
type Direction string

const (
	// Ingoing triples have the expanded node as object: (?s, p, node).
	Ingoing Direction = "ingoing"
	// Outgoing triples have the expanded node as subject: (node, p, ?o).
	Outgoing Direction = "outgoing"
	// SpecOutgoing triples carry type/date metadata for ordering and
	// filtering; they are never added to the result subgraph.
	SpecOutgoing Direction = "spec-outgoing"
)

// Triple is an immutable RDF statement. Object may hold an IRI or a
// (possibly normalised) literal; the two are not distinguished at this
// layer, matching the original interface's plain string triples.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

// Tagged extends a Triple with the direction it was discovered under and
// the iteration that produced it.
type Tagged struct {
	Triple
	Type      Direction
	Iteration uint32
}

// DedupeKey returns the key subgraph dedupe is performed on: (s,p,o,type).
func (t Tagged) DedupeKey() string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s", t.Subject, t.Predicate, t.Object, t.Type)
}

// Priority is the single-digit path-key prefix described in spec §3:
// 1 = predicate's superclass is one of the configured target types,
// 2 = predicate is in the configured demoted/filtered class,
// 3 = everything else. Priority participates in lexicographic score
// tie-breaking, "1" outranking "2" outranking "3".
type Priority byte

const (
	PriorityTarget   Priority = '1'
	PriorityDemoted  Priority = '2'
	PriorityOrdinary Priority = '3'
)

// PredicateKey builds the predicate-only path key: "<priority>-<predicate>".
func PredicateKey(priority Priority, predicate string) string {
	return fmt.Sprintf("%c-%s", priority, predicate)
}

// EndpointKey builds the predicate+endpoint path key for one direction.
// `fixed` is the node already known at the time the row was discovered —
// the object for an ingoing row, the subject for an outgoing row — not the
// free endpoint candidates will be expanded from:
//
//	ingoing:  "<priority>-ingoing-<predicate>;<fixed object>"
//	outgoing: "<priority>-outgoing-<fixed subject>;<predicate>"
func EndpointKey(priority Priority, dir Direction, predicate, fixed string) string {
	switch dir {
	case Ingoing:
		return fmt.Sprintf("%c-ingoing-%s;%s", priority, predicate, fixed)
	case Outgoing:
		return fmt.Sprintf("%c-outgoing-%s;%s", priority, fixed, predicate)
	default:
		return fmt.Sprintf("%c-%s-%s;%s", priority, dir, predicate, fixed)
	}
}
