package frontier

import (
	"testing"

	"github.com/narrativegraph/pathfinder/internal/rdf"
)

// TestTinyGraphSingleStep is spec scenario 1: triples
// {(A,p1,B), (A,p1,C), (C,p2,D)}, seed A. After expanding A's outgoing
// triples only, the subgraph holds the two rows rooted at A, pending_out
// has two rows keyed by (A,p1), and the occurrence count for "3-p1" is 2.
func TestTinyGraphSingleStep(t *testing.T) {
	a, b, c := "A", "B", "C"

	sub := NewSubgraph()
	added := sub.Append(1, rdf.Outgoing, []rdf.Triple{
		{Subject: a, Predicate: "p1", Object: b},
		{Subject: a, Predicate: "p1", Object: c},
	})
	if added != 2 {
		t.Fatalf("Append() = %d, want 2", added)
	}
	if size, _ := sub.Info(); size != 2 {
		t.Errorf("subgraph size = %d, want 2", size)
	}

	pendingOut := NewPendingOutgoing()
	pendingOut.Add(
		Row{Subject: a, Predicate: "p1", Object: b, Priority: rdf.PriorityOrdinary},
		Row{Subject: a, Predicate: "p1", Object: c, Priority: rdf.PriorityOrdinary},
	)
	if pendingOut.Len() != 2 {
		t.Fatalf("pendingOut.Len() = %d, want 2", pendingOut.Len())
	}

	occ := NewOccurrence()
	key := rdf.PredicateKey(rdf.PriorityOrdinary, "p1")
	for range pendingOut.Rows() {
		occ.Inc(key)
	}
	if got := occ.Get(key); got != 2 {
		t.Errorf("occurrence[%q] = %d, want 2", key, got)
	}

	candidates := pendingOut.CandidatesForPredicate("p1")
	if len(candidates) != 2 {
		t.Fatalf("CandidatesForPredicate(p1) = %v, want 2 distinct objects", candidates)
	}
}

func TestSubgraphDedupesByFullKey(t *testing.T) {
	sub := NewSubgraph()
	triples := []rdf.Triple{{Subject: "A", Predicate: "p", Object: "B"}}

	if added := sub.Append(1, rdf.Outgoing, triples); added != 1 {
		t.Fatalf("first Append() = %d, want 1", added)
	}
	if added := sub.Append(2, rdf.Outgoing, triples); added != 0 {
		t.Errorf("duplicate Append() = %d, want 0 (same s,p,o,type)", added)
	}
	if size, _ := sub.Info(); size != 1 {
		t.Errorf("subgraph size after duplicate = %d, want 1", size)
	}

	// Same triple under a different direction is a distinct dedupe key.
	if added := sub.Append(2, rdf.Ingoing, triples); added != 1 {
		t.Errorf("Append() under a new direction = %d, want 1", added)
	}
}

func TestPendingOutgoingPurgeRemovesVisitedCandidates(t *testing.T) {
	pendingOut := NewPendingOutgoing()
	pendingOut.Add(
		Row{Subject: "A", Predicate: "p1", Object: "B"},
		Row{Subject: "A", Predicate: "p1", Object: "C"},
	)

	visited := NewVisited()
	visited.Add("B")
	pendingOut.Purge(visited)

	remaining := pendingOut.Rows()
	if len(remaining) != 1 || remaining[0].Object != "C" {
		t.Fatalf("Purge() left %+v, want only the C row", remaining)
	}
}

func TestPendingIngoingCandidatesByFixedObject(t *testing.T) {
	pendingIn := NewPendingIngoing()
	pendingIn.Add(
		Row{Subject: "X", Predicate: "p", Object: "target"},
		Row{Subject: "Y", Predicate: "p", Object: "target"},
		Row{Subject: "Z", Predicate: "p", Object: "other"},
	)

	got := pendingIn.Candidates("p", "target")
	if len(got) != 2 {
		t.Fatalf("Candidates(p, target) = %v, want 2 distinct subjects", got)
	}
}

func TestOccurrenceInvariantPresentIffReachable(t *testing.T) {
	occ := NewOccurrence()
	key := "3-p1"

	if !occ.Empty() {
		t.Fatal("expected a fresh occurrence map to be empty")
	}

	occ.Inc(key)
	occ.Inc(key)
	if occ.Get(key) != 2 {
		t.Fatalf("Get(%q) = %d, want 2", key, occ.Get(key))
	}

	occ.Decrement(key)
	if occ.Get(key) != 1 {
		t.Fatalf("after one Decrement, Get(%q) = %d, want 1", key, occ.Get(key))
	}

	occ.Decrement(key)
	if _, ok := occ.All()[key]; ok {
		t.Errorf("key %q must be absent once its count reaches zero", key)
	}
	if !occ.Empty() {
		t.Error("expected the occurrence map to be empty once the only key is drained")
	}
}

func TestOccurrenceRemoveDropsKeyRegardlessOfCount(t *testing.T) {
	occ := NewOccurrence()
	key := "3-p1"
	occ.Inc(key)
	occ.Inc(key)
	occ.Inc(key)

	occ.Remove(key)
	if _, ok := occ.All()[key]; ok {
		t.Errorf("Remove() must drop the key even with count > 1")
	}
}

func TestVisitedNeverShrinks(t *testing.T) {
	v := NewVisited()
	v.Add("A")
	v.Add("B")
	v.Add("A")

	if v.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (re-adding a node must not grow it further)", v.Len())
	}
	if !v.Has("A") || !v.Has("B") {
		t.Error("expected both added nodes to be marked visited")
	}
	if v.Has("C") {
		t.Error("unexpected node marked visited")
	}
}
