// Package ranker implements the six path-scoring rules of spec §4.4 and the
// priority/lexicographic tie-break that picks one winning path out of the
// running occurrence map.
package ranker

import (
	"math"

	"github.com/narrativegraph/pathfinder/internal/searcherr"
)

// Rule selects one of the six scoring functions, set once at construction
// per spec §6's `type_ranking` config key.
type Rule string

const (
	PredFreq              Rule = "pred_freq"
	InversePredFreq       Rule = "inverse_pred_freq"
	EntropyPredFreq       Rule = "entropy_pred_freq"
	PredObjectFreq        Rule = "pred_object_freq"
	InversePredObjectFreq Rule = "inverse_pred_object_freq"
	EntropyPredObjectFreq Rule = "entropy_pred_object_freq"
)

// ObjectKeyed reports whether this rule scores (predicate, endpoint) keys
// rather than predicate-only keys — the search loop uses this to decide
// which key shape to record in the occurrence map as triples are merged.
func (r Rule) ObjectKeyed() bool {
	switch r {
	case PredObjectFreq, InversePredObjectFreq, EntropyPredObjectFreq:
		return true
	default:
		return false
	}
}

func validRule(r Rule) bool {
	switch r {
	case PredFreq, InversePredFreq, EntropyPredFreq,
		PredObjectFreq, InversePredObjectFreq, EntropyPredObjectFreq:
		return true
	default:
		return false
	}
}

// Ranker scores the occurrence map under a single, fixed rule.
type Ranker struct {
	rule Rule
}

// New validates rule and returns a Ranker, or a *searcherr.ConfigError if
// rule isn't one of the six recognised scoring functions.
func New(rule Rule) (*Ranker, error) {
	if !validRule(rule) {
		return nil, &searcherr.ConfigError{Key: "type_ranking", Reason: "must be one of the six recognised scoring rules"}
	}
	return &Ranker{rule: rule}, nil
}

// Select returns the highest-scoring path key in occ under the configured
// rule, tie-broken first by the numeric priority prefix ("1" beats "2"
// beats "3") then lexicographically on the full key. Returns ok=false if
// occ is empty — spec §4.4's RankerError::Empty, modelled as "no path"
// rather than a true error (searcherr.RankerEmpty).
func (rk *Ranker) Select(occ map[string]int) (path string, score float64, ok bool) {
	if len(occ) == 0 {
		return "", 0, false
	}

	total := 0
	for _, c := range occ {
		total += c
	}

	var bestKey string
	var bestScore float64
	first := true

	for key, count := range occ {
		s := rk.score(count, total)
		if first || better(key, s, bestKey, bestScore) {
			bestKey, bestScore = key, s
			first = false
		}
	}
	return bestKey, bestScore, true
}

// Rule reports the scoring rule this Ranker was constructed with, so
// callers building occurrence keys know which key shape (predicate-only or
// predicate+endpoint) to record.
func (rk *Ranker) Rule() Rule {
	return rk.rule
}

// score applies the configured rule to one (count, total) pair.
func (rk *Ranker) score(count, total int) float64 {
	switch rk.rule {
	case PredFreq, PredObjectFreq:
		return float64(count)
	case InversePredFreq, InversePredObjectFreq:
		return -float64(count)
	case EntropyPredFreq, EntropyPredObjectFreq:
		if total == 0 {
			return 0
		}
		p := float64(count) / float64(total)
		return -p * math.Log(p)
	default:
		return float64(count)
	}
}

// better reports whether (candKey, candScore) should replace
// (bestKey, bestScore) as the running winner.
func better(candKey string, candScore float64, bestKey string, bestScore float64) bool {
	if candScore != bestScore {
		return candScore > bestScore
	}
	candPriority, bestPriority := candKey[0], bestKey[0]
	if candPriority != bestPriority {
		return candPriority < bestPriority
	}
	return candKey < bestKey
}
