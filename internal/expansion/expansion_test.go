package expansion

import (
	"context"
	"testing"

	"github.com/narrativegraph/pathfinder/internal/narrative"
	"github.com/narrativegraph/pathfinder/internal/ordering"
	"github.com/narrativegraph/pathfinder/internal/rdf"
	"github.com/narrativegraph/pathfinder/internal/searcherr"
	"go.uber.org/zap/zaptest"
)

type fakeAdapter struct {
	ingoing, outgoing, specOutgoing map[string][]rdf.Triple
}

func (f *fakeAdapter) Neighbours(ctx context.Context, node string, excluded []string) ([]rdf.Triple, []rdf.Triple, []rdf.Triple, error) {
	in, ok := f.ingoing[node]
	out := f.outgoing[node]
	spec := f.specOutgoing[node]
	if !ok && len(out) == 0 {
		return nil, nil, nil, searcherr.NotFound(node)
	}
	return in, out, spec, nil
}

type fakeSuperclass struct{}

func (fakeSuperclass) Superclass(ctx context.Context, node string) ([]string, error) {
	return []string{node}, nil
}

func TestExpandOneNotFoundIsEmpty(t *testing.T) {
	a := &fakeAdapter{}
	filter := newNoopFilter(t)
	ord := ordering.New(ordering.Config{}, fakeSuperclass{})
	e := New(a, filter, ord, nil, zaptest.NewLogger(t))

	r, err := e.ExpandOne(context.Background(), 1, "http://example.org/q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Empty {
		t.Errorf("expected Empty result for unknown node")
	}
}

func TestExpandOneBuildsRows(t *testing.T) {
	node := "http://example.org/einstein"
	a := &fakeAdapter{
		outgoing: map[string][]rdf.Triple{
			node: {{Subject: node, Predicate: "P69", Object: "http://example.org/eth_zurich"}},
		},
	}
	filter := newNoopFilter(t)
	ord := ordering.New(ordering.Config{}, fakeSuperclass{})
	e := New(a, filter, ord, nil, zaptest.NewLogger(t))

	r, err := e.ExpandOne(context.Background(), 1, node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.OutgoingRows) != 1 {
		t.Fatalf("expected 1 outgoing row, got %d", len(r.OutgoingRows))
	}
	if r.OutgoingRows[0].Object != "http://example.org/eth_zurich" {
		t.Errorf("unexpected row: %+v", r.OutgoingRows[0])
	}
}

func TestExpandManyPreservesInputOrder(t *testing.T) {
	nodes := []string{"a", "b", "c", "d"}
	a := &fakeAdapter{
		outgoing: map[string][]rdf.Triple{
			"a": {{Subject: "a", Predicate: "p", Object: "a1"}},
			"b": {{Subject: "b", Predicate: "p", Object: "b1"}},
			"c": {{Subject: "c", Predicate: "p", Object: "c1"}},
			"d": {{Subject: "d", Predicate: "p", Object: "d1"}},
		},
	}
	filter := newNoopFilter(t)
	ord := ordering.New(ordering.Config{}, fakeSuperclass{})
	e := New(a, filter, ord, nil, zaptest.NewLogger(t))

	results, err := e.ExpandMany(context.Background(), 1, nodes, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, n := range nodes {
		if results[i].Node != n {
			t.Errorf("index %d: expected node %q, got %q", i, n, results[i].Node)
		}
	}
}

func newNoopFilter(t *testing.T) *narrative.Filter {
	t.Helper()
	f, err := narrative.New(narrative.Config{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("narrative.New: %v", err)
	}
	return f
}
