// Package metrics implements the optional metrics observer (spec §4.8):
// closed-form precision/recall/F1 of the discovered-entities set against a
// gold standard, resolved through a referents (alias → canonical) mapping,
// tracked per iteration with running best-F1 bookkeeping.
package metrics

// Referents maps an alias IRI discovered in the subgraph to the canonical
// IRI it should be scored against in GoldStandard.
type Referents map[string]string

// Snapshot is one iteration's precision/recall/F1 result.
type Snapshot struct {
	Iteration int     `json:"iteration"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Metadata is the run-level summary spec §6 requires in metrics mode.
type Metadata struct {
	Start           string  `json:"start"`
	End             string  `json:"end,omitempty"`
	BestF1          float64 `json:"best_f1"`
	BestF1Precision float64 `json:"best_corresponding_precision"`
	BestF1Recall    float64 `json:"best_corresponding_recall"`
	BestF1Iteration int     `json:"best_f1_it_nb"`
	LastF1          float64 `json:"last_f1"`
	LastPrecision   float64 `json:"last_precision"`
	LastRecall      float64 `json:"last_recall"`
	LastIteration   int     `json:"last_it"`
}

// Tracker scores successive iterations' discovered-entity sets against a
// fixed gold standard and keeps the running best-F1 iteration.
type Tracker struct {
	gold      map[string]struct{}
	referents Referents

	snapshots []Snapshot
	meta      Metadata
}

// NewTracker returns a Tracker for the given gold-standard set and
// referents mapping, with meta.Start stamped by the caller (this package
// never reads the clock, to keep runs reproducible from a fixed input).
func NewTracker(goldStandard []string, referents Referents, start string) *Tracker {
	gold := make(map[string]struct{}, len(goldStandard))
	for _, g := range goldStandard {
		gold[g] = struct{}{}
	}
	return &Tracker{
		gold:      gold,
		referents: referents,
		meta:      Metadata{Start: start},
	}
}

// Update resolves `found` through the referents mapping, scores the
// resulting set against the gold standard, records the snapshot, and
// updates best/last metadata. Returns the snapshot just computed.
func (t *Tracker) Update(iteration int, found []string) Snapshot {
	resolved := make(map[string]struct{}, len(found))
	for _, f := range found {
		canonical := f
		if alias, ok := t.referents[f]; ok {
			canonical = alias
		}
		resolved[canonical] = struct{}{}
	}

	truePositives := 0
	for e := range resolved {
		if _, ok := t.gold[e]; ok {
			truePositives++
		}
	}

	precision := ratio(truePositives, len(resolved))
	recall := ratio(truePositives, len(t.gold))
	f1 := harmonicMean(precision, recall)

	snap := Snapshot{Iteration: iteration, Precision: precision, Recall: recall, F1: f1}
	t.snapshots = append(t.snapshots, snap)

	if f1 > t.meta.BestF1 {
		t.meta.BestF1 = f1
		t.meta.BestF1Precision = precision
		t.meta.BestF1Recall = recall
		t.meta.BestF1Iteration = iteration
	}
	t.meta.LastF1 = f1
	t.meta.LastPrecision = precision
	t.meta.LastRecall = recall
	t.meta.LastIteration = iteration

	return snap
}

// Snapshots returns every recorded per-iteration score, in iteration
// order.
func (t *Tracker) Snapshots() []Snapshot {
	return t.snapshots
}

// Metadata returns the current running best/last summary. Callers set End
// once the run finishes.
func (t *Tracker) Metadata() Metadata {
	return t.meta
}

// SetEnd stamps the run-completion timestamp into the tracked metadata.
func (t *Tracker) SetEnd(end string) {
	t.meta.End = end
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func harmonicMean(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}
