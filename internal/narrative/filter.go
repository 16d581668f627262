// Package narrative implements the narrative-dimension Filter (spec §4.2):
// given a node's spec-outgoing metadata, decide whether it should be
// discarded for being out of the search's temporal window (`when`) or for
// being a location-typed entity that would make the frontier too broad
// (`where`). Grounded on original_source/src/filtering.py, which this
// package follows rule-for-rule.
package narrative

import (
	"regexp"
	"time"

	"github.com/narrativegraph/pathfinder/internal/rdf"
	"github.com/narrativegraph/pathfinder/internal/searcherr"
	"go.uber.org/zap"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// Config configures one Filter instance. RDFType, DatePredicates,
// StartDatePredicates, EndDatePredicates and PlaceClasses are resolved from
// the active dataset config (internal/datasetconfig); StartDate/EndDate
// come from the run's own top-level config.
type Config struct {
	Where bool
	When  bool

	StartDate string // ISO 8601 day, e.g. "2005-01-01"
	EndDate   string

	RDFType             string
	DatePredicates      []string
	StartDatePredicates []string
	EndDatePredicates   []string
	PlaceClasses        []string
}

// Filter applies the where/when narrative dimensions.
type Filter struct {
	cfg Config

	loYear, hiYear string

	dates      map[string]struct{}
	startDates map[string]struct{}
	endDates   map[string]struct{}
	places     map[string]struct{}

	logger *zap.Logger
}

// New validates cfg and builds a Filter. Returns *searcherr.FilterError if
// `when` is set and StartDate/EndDate don't parse as ISO 8601 days.
func New(cfg Config, logger *zap.Logger) (*Filter, error) {
	f := &Filter{
		cfg:        cfg,
		dates:      toSet(cfg.DatePredicates),
		startDates: toSet(cfg.StartDatePredicates),
		endDates:   toSet(cfg.EndDatePredicates),
		places:     toSet(cfg.PlaceClasses),
		logger:     logger,
	}

	if cfg.When {
		if _, err := time.Parse("2006-01-02", cfg.StartDate); err != nil {
			return nil, &searcherr.FilterError{BadDate: cfg.StartDate}
		}
		if _, err := time.Parse("2006-01-02", cfg.EndDate); err != nil {
			return nil, &searcherr.FilterError{BadDate: cfg.EndDate}
		}
		if len(cfg.StartDate) < 4 || len(cfg.EndDate) < 4 {
			return nil, &searcherr.FilterError{BadDate: cfg.StartDate}
		}
		f.loYear = cfg.StartDate[:4]
		f.hiYear = cfg.EndDate[:4]
	}

	return f, nil
}

func toSet(vals []string) map[string]struct{} {
	s := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Discard returns the set of node IRIs to drop from the expansion,
// deduplicated across the where and when dimensions. `ingoing`/`outgoing`
// are the newly discovered candidate triples for this node expansion;
// `specOutgoing` is the type/date metadata fetched for those same
// candidates (spec §4.6 step 2).
func (f *Filter) Discard(ingoing, outgoing, specOutgoing []rdf.Triple) []string {
	discarded := make(map[string]struct{})

	if f.cfg.Where {
		for _, t := range specOutgoing {
			if t.Predicate != f.cfg.RDFType {
				continue
			}
			if _, isPlace := f.places[t.Object]; isPlace {
				discarded[t.Subject] = struct{}{}
			}
		}
	}

	if f.cfg.When {
		for node := range f.discardByDate(specOutgoing) {
			discarded[node] = struct{}{}
		}
		for node := range f.discardByRegexYear(ingoing, outgoing) {
			discarded[node] = struct{}{}
		}
	}

	out := make([]string, 0, len(discarded))
	for node := range discarded {
		out = append(out, node)
	}
	return out
}

// discardByDate applies the three closed-form date-window checks against
// the temporal predicates (endDate/startDate/date) in the metadata.
func (f *Filter) discardByDate(specOutgoing []rdf.Triple) map[string]struct{} {
	discard := make(map[string]struct{})
	for _, t := range specOutgoing {
		switch {
		case isIn(t.Predicate, f.endDates) && t.Object < f.cfg.StartDate:
			discard[t.Subject] = struct{}{}
		case isIn(t.Predicate, f.startDates) && t.Object > f.cfg.EndDate:
			discard[t.Subject] = struct{}{}
		case isIn(t.Predicate, f.dates) && (t.Object < f.cfg.StartDate || t.Object > f.cfg.EndDate):
			discard[t.Subject] = struct{}{}
		}
	}
	return discard
}

// discardByRegexYear applies the regex fallback: the first 4-digit group
// found in the candidate node's own IRI is read as a year; out-of-window
// years are discarded, and an IRI with no 4-digit group is always kept.
func (f *Filter) discardByRegexYear(ingoing, outgoing []rdf.Triple) map[string]struct{} {
	discard := make(map[string]struct{})
	for _, t := range ingoing {
		if year, ok := firstYear(t.Subject); ok && outOfWindow(year, f.loYear, f.hiYear) {
			discard[t.Subject] = struct{}{}
		}
	}
	for _, t := range outgoing {
		if year, ok := firstYear(t.Object); ok && outOfWindow(year, f.loYear, f.hiYear) {
			discard[t.Object] = struct{}{}
		}
	}
	return discard
}

func firstYear(iri string) (string, bool) {
	m := yearPattern.FindString(iri)
	if m == "" {
		return "", false
	}
	return m, true
}

func outOfWindow(year, lo, hi string) bool {
	return year < lo || year > hi
}

func isIn(predicate string, set map[string]struct{}) bool {
	_, ok := set[predicate]
	return ok
}
