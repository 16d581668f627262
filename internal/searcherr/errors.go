// Package searcherr defines the error taxonomy shared across the search
// engine (spec §7). Each kind carries enough context to diagnose a failed
// run without re-executing it.
package searcherr

import "fmt"

// ConfigError is raised once, before a run starts; always fatal.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %q: %s", e.Key, e.Reason)
}

// FilterError wraps a narrative-filter construction failure. Per spec §7
// this is only ever raised as a fatal config error at start, never mid-run.
type FilterError struct {
	BadDate string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filtering: invalid date %q, expected ISO 8601 (YYYY-MM-DD)", e.BadDate)
}

// AdapterErrorKind distinguishes the three adapter failure modes of §7.
type AdapterErrorKind int

const (
	// AdapterNotFound means the node has no triples in the store; the
	// loop treats it as an empty neighbourhood and marks the node visited
	// with zero expansion rather than failing the iteration.
	AdapterNotFound AdapterErrorKind = iota
	// AdapterIO is a transient failure of the underlying transport;
	// retried with backoff, then surfaced as an iteration failure.
	AdapterIO
	// AdapterCycle marks a cycle detected while walking rdfs:subClassOf;
	// the superclass call returns the node itself rather than failing.
	AdapterCycle
)

// AdapterError is returned by the triple-store adapter.
type AdapterError struct {
	Kind  AdapterErrorKind
	Node  string
	Cause error
}

func (e *AdapterError) Error() string {
	switch e.Kind {
	case AdapterNotFound:
		return fmt.Sprintf("adapter: node %q not found", e.Node)
	case AdapterCycle:
		return fmt.Sprintf("adapter: cycle detected walking superclass of %q", e.Node)
	default:
		return fmt.Sprintf("adapter: io error for %q: %v", e.Node, e.Cause)
	}
}

func (e *AdapterError) Unwrap() error { return e.Cause }

// NotFound builds an AdapterNotFound error for node.
func NotFound(node string) *AdapterError {
	return &AdapterError{Kind: AdapterNotFound, Node: node}
}

// IO builds an AdapterIO error for node, wrapping cause.
func IO(node string, cause error) *AdapterError {
	return &AdapterError{Kind: AdapterIO, Node: node, Cause: cause}
}

// Cycle builds an AdapterCycle error for node.
func Cycle(node string) *AdapterError {
	return &AdapterError{Kind: AdapterCycle, Node: node}
}

// RankerEmpty is not a true error — it models "no path remains" and drives
// the NoMorePaths terminal transition (spec §4.4, §4.7). It is exported as
// a value so callers can compare with errors.Is if they choose to treat it
// as one, but the search loop never surfaces it to a caller as a failure.
var RankerEmpty = fmt.Errorf("ranker: occurrence map is empty")
