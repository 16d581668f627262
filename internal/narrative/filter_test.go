package narrative

import (
	"testing"

	"github.com/narrativegraph/pathfinder/internal/rdf"
	"go.uber.org/zap/zaptest"
)

const (
	rdfType = "rdf:type"
	dbDate  = "dbo:date"
	dbPlace = "dbo:Place"
)

// TestDiscardTemporalFilter is spec scenario 3: a seed with three
// neighbours dated 2000-06-01, 2010-01-01 and 2020-12-31 under window
// [2005-01-01, 2015-01-01] must discard the first and third, retaining
// only the middle one.
func TestDiscardTemporalFilter(t *testing.T) {
	f, err := New(Config{
		When:           true,
		StartDate:      "2005-01-01",
		EndDate:        "2015-01-01",
		DatePredicates: []string{dbDate},
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	early := "http://example.org/early"
	mid := "http://example.org/mid"
	late := "http://example.org/late"
	specOutgoing := []rdf.Triple{
		{Subject: early, Predicate: dbDate, Object: "2000-06-01"},
		{Subject: mid, Predicate: dbDate, Object: "2010-01-01"},
		{Subject: late, Predicate: dbDate, Object: "2020-12-31"},
	}

	discarded := toSetSlice(f.Discard(nil, nil, specOutgoing))
	if _, ok := discarded[early]; !ok {
		t.Errorf("expected %q (before window) to be discarded", early)
	}
	if _, ok := discarded[late]; !ok {
		t.Errorf("expected %q (after window) to be discarded", late)
	}
	if _, ok := discarded[mid]; ok {
		t.Errorf("expected %q (inside window) to be retained", mid)
	}
}

// TestDiscardLocationFilter is spec scenario 4: with Where enabled, a
// neighbour typed dbo:Place must be discarded even when it would otherwise
// be within the temporal window.
func TestDiscardLocationFilter(t *testing.T) {
	f, err := New(Config{
		Where:        true,
		RDFType:      rdfType,
		PlaceClasses: []string{dbPlace},
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	place := "http://example.org/geneva"
	person := "http://example.org/einstein"
	specOutgoing := []rdf.Triple{
		{Subject: place, Predicate: rdfType, Object: dbPlace},
		{Subject: person, Predicate: rdfType, Object: "dbo:Person"},
	}

	discarded := toSetSlice(f.Discard(nil, nil, specOutgoing))
	if _, ok := discarded[place]; !ok {
		t.Errorf("expected %q (typed dbo:Place) to be discarded", place)
	}
	if _, ok := discarded[person]; ok {
		t.Errorf("expected %q (not a place) to be retained", person)
	}
}

// TestFilteringWhenZeroWidthWindowRetainsExactDayOnly covers spec's
// boundary "filtering.when with t_lo == t_hi retains only nodes dated
// exactly on that day".
func TestFilteringWhenZeroWidthWindowRetainsExactDayOnly(t *testing.T) {
	f, err := New(Config{
		When:           true,
		StartDate:      "2010-01-01",
		EndDate:        "2010-01-01",
		DatePredicates: []string{dbDate},
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	onDay := "http://example.org/on-day"
	dayBefore := "http://example.org/day-before"
	dayAfter := "http://example.org/day-after"
	specOutgoing := []rdf.Triple{
		{Subject: onDay, Predicate: dbDate, Object: "2010-01-01"},
		{Subject: dayBefore, Predicate: dbDate, Object: "2009-12-31"},
		{Subject: dayAfter, Predicate: dbDate, Object: "2010-01-02"},
	}

	discarded := toSetSlice(f.Discard(nil, nil, specOutgoing))
	if _, ok := discarded[onDay]; ok {
		t.Errorf("expected %q (exactly on the window day) to be retained", onDay)
	}
	if _, ok := discarded[dayBefore]; !ok {
		t.Errorf("expected %q (before the window) to be discarded", dayBefore)
	}
	if _, ok := discarded[dayAfter]; !ok {
		t.Errorf("expected %q (after the window) to be discarded", dayAfter)
	}
}

func TestNewRejectsMalformedDate(t *testing.T) {
	_, err := New(Config{When: true, StartDate: "not-a-date", EndDate: "2010-01-01"}, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("expected a FilterError for a malformed start date")
	}
}

func toSetSlice(vals []string) map[string]struct{} {
	s := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}
