package store

import (
	"testing"

	"github.com/narrativegraph/pathfinder/internal/rdf"
)

func TestPostFilterNamespaceDenylist(t *testing.T) {
	f := newPostFilter(PostFilterConfig{
		NamespaceDenylist: []string{"http://wikiba.se/"},
	})

	in := []rdf.Triple{
		{Subject: "http://www.wikidata.org/entity/Q1", Predicate: "P31", Object: "http://wikiba.se/ontology#Item"},
		{Subject: "http://www.wikidata.org/entity/Q1", Predicate: "P31", Object: "http://www.wikidata.org/entity/Q5"},
	}
	out := f.Apply(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 triple to survive, got %d", len(out))
	}
	if out[0].Object != "http://www.wikidata.org/entity/Q5" {
		t.Errorf("unexpected survivor: %+v", out[0])
	}
}

func TestPostFilterCategoryDenylist(t *testing.T) {
	f := newPostFilter(PostFilterConfig{
		CategoryDenylist:  []string{"http://dbpedia.org/resource/Category:"},
		ExcludeCategories: true,
	})

	in := []rdf.Triple{
		{Subject: "http://dbpedia.org/resource/Albert_Einstein", Predicate: "dct:subject", Object: "http://dbpedia.org/resource/Category:Physicists"},
		{Subject: "http://dbpedia.org/resource/Albert_Einstein", Predicate: "P106", Object: "http://dbpedia.org/resource/Physicist"},
	}
	out := f.Apply(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 triple to survive, got %d", len(out))
	}
}

func TestNormalizeLiteralDate(t *testing.T) {
	obj := `"1955-04-18"^^<http://www.w3.org/2001/XMLSchema#date>`
	got, drop := normalizeLiteral(obj, nil)
	if drop {
		t.Fatalf("date literal should not be dropped")
	}
	if got != "1955-04-18" {
		t.Errorf("got %q, want 1955-04-18", got)
	}
}

func TestNormalizeLiteralInteger(t *testing.T) {
	obj := `"1905"^^<http://www.w3.org/2001/XMLSchema#integer>`
	got, _ := normalizeLiteral(obj, nil)
	if got != "1905" {
		t.Errorf("got %q, want 1905", got)
	}
}

func TestNormalizeLiteralSentinelDropped(t *testing.T) {
	_, drop := normalizeLiteral(`"Unknown"@en`, []string{`"Unknown"`})
	if !drop {
		t.Errorf("sentinel literal should be dropped")
	}
}

func TestNormalizeLiteralPassthrough(t *testing.T) {
	got, drop := normalizeLiteral("http://dbpedia.org/resource/Ulm", nil)
	if drop {
		t.Fatalf("plain IRI should not be dropped")
	}
	if got != "http://dbpedia.org/resource/Ulm" {
		t.Errorf("literal mutated unexpectedly: %q", got)
	}
}
