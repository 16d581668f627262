package search

import (
	"context"
	"testing"

	"github.com/narrativegraph/pathfinder/internal/expansion"
	"github.com/narrativegraph/pathfinder/internal/narrative"
	"github.com/narrativegraph/pathfinder/internal/ordering"
	"github.com/narrativegraph/pathfinder/internal/ranker"
	"github.com/narrativegraph/pathfinder/internal/rdf"
	"github.com/narrativegraph/pathfinder/internal/searcherr"
	"github.com/narrativegraph/pathfinder/internal/selector"
	"go.uber.org/zap/zaptest"
)

type fakeAdapter struct {
	outgoing map[string][]rdf.Triple
	ingoing  map[string][]rdf.Triple
}

func (f *fakeAdapter) Neighbours(ctx context.Context, node string, excluded []string) ([]rdf.Triple, []rdf.Triple, []rdf.Triple, error) {
	in := f.ingoing[node]
	out := f.outgoing[node]
	if len(in) == 0 && len(out) == 0 {
		return nil, nil, nil, searcherr.NotFound(node)
	}
	return in, out, nil, nil
}

type fakeSuperclass struct{}

func (fakeSuperclass) Superclass(ctx context.Context, node string) ([]string, error) {
	return []string{node}, nil
}

func newTestExpander(t *testing.T, adapter *fakeAdapter) *expansion.Expander {
	t.Helper()
	filter, err := narrative.New(narrative.Config{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("narrative.New: %v", err)
	}
	ord := ordering.New(ordering.Config{}, fakeSuperclass{})
	return expansion.New(adapter, filter, ord, nil, zaptest.NewLogger(t))
}

func TestRunFindsTargetNode(t *testing.T) {
	start := "http://example.org/start"
	target := "http://example.org/target"
	adapter := &fakeAdapter{
		outgoing: map[string][]rdf.Triple{
			start: {{Subject: start, Predicate: "p", Object: target}},
		},
	}

	rank, err := ranker.New(ranker.PredFreq)
	if err != nil {
		t.Fatalf("ranker.New: %v", err)
	}
	sel, err := selector.New(selector.All, 1)
	if err != nil {
		t.Fatalf("selector.New: %v", err)
	}

	cfg := Config{Start: start, Iterations: 5, TargetNode: target}
	fw, err := New(cfg, newTestExpander(t, adapter), rank, sel, nil, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := fw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Exit != ExitTargetFound {
		t.Errorf("Exit = %q, want %q", result.Exit, ExitTargetFound)
	}
	if result.IterationsRun != 1 {
		t.Errorf("IterationsRun = %d, want 1", result.IterationsRun)
	}
}

func TestRunNoMorePaths(t *testing.T) {
	start := "http://example.org/isolated"
	adapter := &fakeAdapter{}

	rank, _ := ranker.New(ranker.PredFreq)
	sel, _ := selector.New(selector.All, 1)

	cfg := Config{Start: start, Iterations: 10}
	fw, err := New(cfg, newTestExpander(t, adapter), rank, sel, nil, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := fw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Exit != ExitNoMorePaths {
		t.Errorf("Exit = %q, want %q", result.Exit, ExitNoMorePaths)
	}
	if result.IterationsRun != 1 {
		t.Errorf("IterationsRun = %d, want 1", result.IterationsRun)
	}
}

func TestRunExhaustsBudget(t *testing.T) {
	// A chain long enough to outlast the iteration budget, with no target
	// configured: the run should stop only once Iterations is exhausted,
	// never running the occurrence map dry.
	a, b, c, d := "http://example.org/a", "http://example.org/b", "http://example.org/c", "http://example.org/d"
	adapter := &fakeAdapter{
		outgoing: map[string][]rdf.Triple{
			a: {{Subject: a, Predicate: "p", Object: b}},
			b: {{Subject: b, Predicate: "p", Object: c}},
			c: {{Subject: c, Predicate: "p", Object: d}},
		},
	}

	rank, _ := ranker.New(ranker.PredFreq)
	sel, _ := selector.New(selector.All, 1)

	cfg := Config{Start: a, Iterations: 3}
	fw, err := New(cfg, newTestExpander(t, adapter), rank, sel, nil, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := fw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Exit != ExitBudgetExhausted {
		t.Errorf("Exit = %q, want %q", result.Exit, ExitBudgetExhausted)
	}
	if result.IterationsRun != 3 {
		t.Errorf("IterationsRun = %d, want 3", result.IterationsRun)
	}
}

func TestSelectCandidatesInitialState(t *testing.T) {
	adapter := &fakeAdapter{}
	rank, _ := ranker.New(ranker.PredFreq)
	sel, _ := selector.New(selector.All, 1)
	cfg := Config{Start: "http://example.org/seed", Iterations: 1}
	fw, err := New(cfg, newTestExpander(t, adapter), rank, sel, nil, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := fw.selectCandidates()
	if len(got) != 1 || got[0] != cfg.Start {
		t.Errorf("selectCandidates() = %v, want [%s]", got, cfg.Start)
	}
}

func TestDecodePathKeyRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		key       string
		wantKind  string
		wantPred  string
		wantFixed string
	}{
		{
			name:      "ingoing",
			key:       rdf.EndpointKey(rdf.PriorityOrdinary, rdf.Ingoing, "P69", "eth_zurich"),
			wantKind:  "ingoing",
			wantPred:  "P69",
			wantFixed: "eth_zurich",
		},
		{
			name:      "outgoing",
			key:       rdf.EndpointKey(rdf.PriorityTarget, rdf.Outgoing, "P69", "einstein"),
			wantKind:  "outgoing",
			wantPred:  "P69",
			wantFixed: "einstein",
		},
		{
			name:     "predicate only",
			key:      rdf.PredicateKey(rdf.PriorityDemoted, "P31"),
			wantKind: "predicate",
			wantPred: "P31",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			kind, pred, fixed := decodePathKey(c.key)
			if kind != c.wantKind {
				t.Errorf("kind = %q, want %q", kind, c.wantKind)
			}
			if pred != c.wantPred {
				t.Errorf("predicate = %q, want %q", pred, c.wantPred)
			}
			if fixed != c.wantFixed {
				t.Errorf("fixed = %q, want %q", fixed, c.wantFixed)
			}
		})
	}
}

func TestConfigValidateRequiresStartAndRejectsNegativeIterations(t *testing.T) {
	if err := (Config{}).validate(); err == nil {
		t.Fatal("expected error for empty config")
	}
	if err := (Config{Start: "s", Iterations: -1}).validate(); err == nil {
		t.Fatal("expected error for negative iterations")
	}
	if err := (Config{Start: "s", Iterations: 1, Metrics: true}).validate(); err == nil {
		t.Fatal("expected error for metrics mode without gold standard")
	}
	if err := (Config{Start: "s", Iterations: 1}).validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Config{Start: "s", Iterations: 0}).validate(); err != nil {
		t.Errorf("iterations=0 must be a valid zero budget, got: %v", err)
	}
}

func TestRunWithZeroIterationsExitsBudgetExhaustedWithEmptyArtifacts(t *testing.T) {
	// spec's boundary scenario: iterations=0 yields empty artifacts and
	// exits budget_exhausted without ever calling the expander.
	adapter := &fakeAdapter{}
	rank, _ := ranker.New(ranker.PredFreq)
	sel, _ := selector.New(selector.All, 1)

	cfg := Config{Start: "http://example.org/seed", Iterations: 0}
	fw, err := New(cfg, newTestExpander(t, adapter), rank, sel, nil, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := fw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Exit != ExitBudgetExhausted {
		t.Errorf("Exit = %q, want %q", result.Exit, ExitBudgetExhausted)
	}
	if result.IterationsRun != 0 {
		t.Errorf("IterationsRun = %d, want 0", result.IterationsRun)
	}
	if len(result.Records) != 0 || len(result.NodesExpanded) != 0 || len(result.SubgraphInfos) != 0 {
		t.Errorf("expected empty artifacts, got Records=%v NodesExpanded=%v SubgraphInfos=%v",
			result.Records, result.NodesExpanded, result.SubgraphInfos)
	}
	if result.Subgraph == nil {
		t.Fatal("expected a non-nil (empty) subgraph")
	}
}
