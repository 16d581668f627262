// Package selector implements the node selector (spec §4.5): given the
// full set of candidate nodes reachable through the chosen path, decide
// which ones to actually expand this iteration.
package selector

import (
	"math/rand/v2"

	"github.com/narrativegraph/pathfinder/internal/searcherr"
)

// Mode is the node-selection strategy, set once at construction per spec
// §6's implicit `node_selection` parameter.
type Mode string

const (
	// All expands every candidate node of the chosen path.
	All Mode = "all"
	// Random expands exactly one candidate, drawn uniformly.
	Random Mode = "random"
)

// Selector picks which candidate nodes to expand this iteration.
type Selector struct {
	mode Mode
	rng  *rand.Rand
}

// New returns a Selector for mode, seeded with seed for reproducible
// `random` selection — spec §4.5 and §5 both require the entire run to be
// deterministic given a fixed PRNG seed.
func New(mode Mode, seed uint64) (*Selector, error) {
	switch mode {
	case All, Random:
	default:
		return nil, &searcherr.ConfigError{Key: "node_selection", Reason: "must be \"all\" or \"random\""}
	}
	return &Selector{
		mode: mode,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}, nil
}

// Select returns the subset of candidates to expand this iteration. An
// empty or nil candidates slice returns nil.
func (s *Selector) Select(candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	if s.mode == All {
		return candidates
	}
	i := s.rng.IntN(len(candidates))
	return []string{candidates[i]}
}

// Mode reports the configured selection strategy.
func (s *Selector) Mode() Mode {
	return s.mode
}
