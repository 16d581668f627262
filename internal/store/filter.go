package store

import (
	"strings"

	"github.com/narrativegraph/pathfinder/internal/rdf"
)

// Literal type markers recognised by normalizeLiteral. The original HDT
// interface matches on the full XMLSchema datatype IRI; we additionally
// accept the short `^^xsd:*` alias some dataset dumps use.
const (
	xsdDateMarker    = "XMLSchema#date"
	xsdIntegerMarker = "XMLSchema#integer"
	xsdDateSuffix    = "^^xsd:date"
	xsdIntegerSuffix = "^^xsd:integer"
)

// PostFilterConfig configures the denylist/normalization pipeline every
// triple coming out of an Adapter passes through, grounded on
// original_source/src/hdt_interface.py's `_filter_namespace`, `_filter`,
// `_filter_specific` and `pre_process_date`.
type PostFilterConfig struct {
	// NamespaceDenylist drops any triple whose subject or object starts
	// with one of these prefixes (internal Wikidata/DBpedia bookkeeping
	// namespaces: schema, skos, provenance nodes, etc).
	NamespaceDenylist []string
	// CategoryDenylist additionally drops triples whose subject or object
	// starts with one of these prefixes, only when ExcludeCategories is
	// set — used to keep Wikipedia category pages out of the frontier.
	CategoryDenylist  []string
	ExcludeCategories bool
	// SentinelLiterals are exact object-value prefixes that are dropped
	// outright rather than normalized (placeholder strings like
	// "Unknown"@en some dumps use in place of a real value).
	SentinelLiterals []string
}

// postFilter applies one PostFilterConfig to a batch of triples.
type postFilter struct {
	cfg PostFilterConfig
}

func newPostFilter(cfg PostFilterConfig) postFilter {
	return postFilter{cfg: cfg}
}

// Apply returns the subset of triples that survive the denylists, with
// object literals normalized in place.
func (f postFilter) Apply(triples []rdf.Triple) []rdf.Triple {
	kept := triples[:0]
	for _, t := range triples {
		if hasPrefixAny(t.Subject, f.cfg.NamespaceDenylist) || hasPrefixAny(t.Object, f.cfg.NamespaceDenylist) {
			continue
		}
		if f.cfg.ExcludeCategories &&
			(hasPrefixAny(t.Subject, f.cfg.CategoryDenylist) || hasPrefixAny(t.Object, f.cfg.CategoryDenylist)) {
			continue
		}
		obj, drop := normalizeLiteral(t.Object, f.cfg.SentinelLiterals)
		if drop {
			continue
		}
		t.Object = obj
		kept = append(kept, t)
	}
	return kept
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// normalizeLiteral rewrites a dated or integer-typed literal to its
// 10-character date prefix or 4-character year prefix respectively, drops
// sentinel placeholder values, and passes everything else through
// unchanged.
func normalizeLiteral(object string, sentinels []string) (value string, drop bool) {
	for _, s := range sentinels {
		if s != "" && strings.HasPrefix(object, s) {
			return "", true
		}
	}

	if strings.Contains(object, xsdDateMarker) || strings.HasSuffix(object, xsdDateSuffix) {
		v := strings.TrimPrefix(object, `"`)
		if len(v) >= 10 {
			return v[:10], false
		}
		return v, false
	}

	if strings.Contains(object, xsdIntegerMarker) || strings.HasSuffix(object, xsdIntegerSuffix) {
		v := strings.TrimPrefix(object, `"`)
		if len(v) >= 4 {
			return v[:4], false
		}
		return v, false
	}

	return object, false
}
