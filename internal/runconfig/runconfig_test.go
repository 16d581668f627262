package runconfig

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/narrativegraph/pathfinder/internal/ranker"
	"github.com/narrativegraph/pathfinder/internal/selector"
)

func TestAssembleBuildsFrameworkForRemoteAdapter(t *testing.T) {
	cfg := RunConfig{
		Start:         "http://example.org/start",
		Iterations:    3,
		TypeRanking:   ranker.PredFreq,
		TypeInterface: "remote",
		RemoteURL:     "http://localhost:0",
	}

	built, err := Assemble(context.Background(), cfg, zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	defer built.Close()

	if built.Framework == nil {
		t.Fatal("expected a non-nil Framework")
	}
	if built.EventIndex == nil {
		t.Fatal("expected Assemble to build an event index")
	}
	if built.RunID == "" {
		t.Fatal("expected a generated run ID when none was given")
	}
}

func TestAssembleHonoursExplicitRunID(t *testing.T) {
	cfg := RunConfig{
		Start:         "http://example.org/start",
		Iterations:    1,
		TypeRanking:   ranker.PredFreq,
		TypeInterface: "remote",
		RemoteURL:     "http://localhost:0",
		NodeSelect:    selector.All,
		RunID:         "fixed-run-id",
	}

	built, err := Assemble(context.Background(), cfg, zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	defer built.Close()

	if built.RunID != "fixed-run-id" {
		t.Errorf("expected run id %q, got %q", "fixed-run-id", built.RunID)
	}
}

func TestParseParallelism(t *testing.T) {
	cases := map[string]int{
		"":           0,
		"sequential": 0,
		"pool:4":     4,
		"pool:0":     0,
		"garbage":    0,
	}
	for input, want := range cases {
		if got := parseParallelism(input); got != want {
			t.Errorf("parseParallelism(%q) = %d, want %d", input, got, want)
		}
	}
}
