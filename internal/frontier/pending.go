package frontier

import "github.com/narrativegraph/pathfinder/internal/rdf"

// Row is one candidate row in a pending relation: a triple plus the
// superclass annotations and path-key priority the ordering component
// stamps onto it before it becomes eligible for expansion.
type Row struct {
	Subject           string
	Predicate         string
	Object            string
	// SubjectSuperclass and ObjectSuperclass each hold one resolved
	// ancestor IRI picked for display out of the endpoint's full
	// resolver.Superclass(ctx, node) set (one ancestor per distinct
	// rdf:type the node carries). Target-type matching itself is done
	// by Ordering.matchTarget against the complete set before this row
	// is built, so picking only one here never affects domain/range
	// pruning — it just gives callers a single representative class per
	// endpoint to show.
	SubjectSuperclass string
	ObjectSuperclass  string
	Priority          rdf.Priority
}

type indexKey struct{ a, b string }

// PendingIngoing holds ingoing rows — (?s, p, node) — indexed on
// (predicate, object) so the loop can recover every candidate subject
// reachable through a chosen (predicate, object) path in O(1). Per design
// note §9 this is modelled as an append-only row log plus a hashmap index,
// not a table rewritten on every purge.
type PendingIngoing struct {
	rows  []Row
	index map[indexKey][]int
}

// NewPendingIngoing returns an empty ingoing relation.
func NewPendingIngoing() *PendingIngoing {
	return &PendingIngoing{index: make(map[indexKey][]int)}
}

// Add appends rows to the relation and updates the index.
func (p *PendingIngoing) Add(rows ...Row) {
	for _, r := range rows {
		idx := len(p.rows)
		p.rows = append(p.rows, r)
		k := indexKey{r.Predicate, r.Object}
		p.index[k] = append(p.index[k], idx)
	}
}

// Candidates returns the distinct subjects reachable through (predicate,
// object), i.e. the nodes this path would expand to next.
func (p *PendingIngoing) Candidates(predicate, object string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, idx := range p.index[indexKey{predicate, object}] {
		s := p.rows[idx].Subject
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// CandidatesForPredicate returns distinct subjects across every row whose
// predicate matches, regardless of the fixed object — used for
// predicate-only path keys (pred_freq family).
func (p *PendingIngoing) CandidatesForPredicate(predicate string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range p.rows {
		if r.Predicate != predicate {
			continue
		}
		if _, ok := seen[r.Subject]; ok {
			continue
		}
		seen[r.Subject] = struct{}{}
		out = append(out, r.Subject)
	}
	return out
}

// Purge removes every row whose candidate subject has been visited. It is
// a set-difference over the row log, not a full rebuild of the index: rows
// are tombstoned in place and skipped by future Candidates() calls.
func (p *PendingIngoing) Purge(visited *Visited) {
	kept := p.rows[:0]
	newIndex := make(map[indexKey][]int, len(p.index))
	for _, r := range p.rows {
		if visited.Has(r.Subject) {
			continue
		}
		idx := len(kept)
		kept = append(kept, r)
		k := indexKey{r.Predicate, r.Object}
		newIndex[k] = append(newIndex[k], idx)
	}
	p.rows = kept
	p.index = newIndex
}

// Rows returns every row currently pending, for occurrence bookkeeping and
// ordering's info table.
func (p *PendingIngoing) Rows() []Row { return p.rows }

// Len returns the number of pending ingoing rows.
func (p *PendingIngoing) Len() int { return len(p.rows) }

// PendingOutgoing holds outgoing rows — (node, p, ?o) — indexed on
// (subject, predicate).
type PendingOutgoing struct {
	rows  []Row
	index map[indexKey][]int
}

// NewPendingOutgoing returns an empty outgoing relation.
func NewPendingOutgoing() *PendingOutgoing {
	return &PendingOutgoing{index: make(map[indexKey][]int)}
}

// Add appends rows to the relation and updates the index.
func (p *PendingOutgoing) Add(rows ...Row) {
	for _, r := range rows {
		idx := len(p.rows)
		p.rows = append(p.rows, r)
		k := indexKey{r.Subject, r.Predicate}
		p.index[k] = append(p.index[k], idx)
	}
}

// Candidates returns the distinct objects reachable through (subject,
// predicate).
func (p *PendingOutgoing) Candidates(subject, predicate string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, idx := range p.index[indexKey{subject, predicate}] {
		o := p.rows[idx].Object
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

// CandidatesForPredicate returns distinct objects across every row whose
// predicate matches, regardless of the fixed subject.
func (p *PendingOutgoing) CandidatesForPredicate(predicate string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range p.rows {
		if r.Predicate != predicate {
			continue
		}
		if _, ok := seen[r.Object]; ok {
			continue
		}
		seen[r.Object] = struct{}{}
		out = append(out, r.Object)
	}
	return out
}

// Purge removes every row whose candidate object has been visited.
func (p *PendingOutgoing) Purge(visited *Visited) {
	kept := p.rows[:0]
	newIndex := make(map[indexKey][]int, len(p.index))
	for _, r := range p.rows {
		if visited.Has(r.Object) {
			continue
		}
		idx := len(kept)
		kept = append(kept, r)
		k := indexKey{r.Subject, r.Predicate}
		newIndex[k] = append(newIndex[k], idx)
	}
	p.rows = kept
	p.index = newIndex
}

// Rows returns every row currently pending.
func (p *PendingOutgoing) Rows() []Row { return p.rows }

// Len returns the number of pending outgoing rows.
func (p *PendingOutgoing) Len() int { return len(p.rows) }
