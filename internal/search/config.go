// Package search implements the Framework (spec §4.7): the single
// cooperative loop that drives node selection, expansion, filtering and
// ranking across iterations until a target node is found, the ranker's
// occurrence map runs dry, or the iteration budget is exhausted.
package search

import (
	"github.com/narrativegraph/pathfinder/internal/metrics"
	"github.com/narrativegraph/pathfinder/internal/ranker"
	"github.com/narrativegraph/pathfinder/internal/selector"
	"github.com/narrativegraph/pathfinder/internal/searcherr"
)

// Config is the run-level configuration a Framework is built from. Most
// fields mirror spec §6's external run-request shape one-to-one; the
// metrics-mode fields are only mandatory together, matching the original's
// config check.
type Config struct {
	Start      string
	Iterations int
	TargetNode string

	RunID string

	// ParallelismWorkers bounds the node-expansion fan-out within a single
	// iteration (spec §5). 0 or 1 runs expansion sequentially.
	ParallelismWorkers int

	SelectionMode selector.Mode
	SelectionSeed uint64

	RankingRule ranker.Rule

	// Metrics enables the optional precision/recall/F1 observer (spec
	// §4.8). When true, GoldStandard must be non-empty.
	Metrics      bool
	GoldStandard []string
	Referents    metrics.Referents
}

// validate mirrors the original's `_check_config`: Start is always
// mandatory, Iterations is a non-negative budget (zero is valid and yields
// an immediate ExitBudgetExhausted with empty artifacts), and the metrics
// fields are conditionally mandatory as a group.
func (c Config) validate() error {
	if c.Start == "" {
		return &searcherr.ConfigError{Key: "start", Reason: "must be set"}
	}
	if c.Iterations < 0 {
		return &searcherr.ConfigError{Key: "iterations", Reason: "must be a non-negative integer"}
	}
	if c.Metrics && len(c.GoldStandard) == 0 {
		return &searcherr.ConfigError{Key: "gold_standard", Reason: "must be non-empty when metrics mode is enabled"}
	}
	return nil
}

// ExitReason records why Run stopped.
type ExitReason string

const (
	// ExitTargetFound means the configured TargetNode was reached.
	ExitTargetFound ExitReason = "target_found"
	// ExitNoMorePaths means the ranker's occurrence map ran dry before the
	// iteration budget was exhausted.
	ExitNoMorePaths ExitReason = "no_more_paths"
	// ExitBudgetExhausted means Iterations ran out with the ranker still
	// holding candidate paths.
	ExitBudgetExhausted ExitReason = "budget_exhausted"
)
