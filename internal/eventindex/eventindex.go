// Package eventindex maintains a supplementary full-text index over the
// entities a search run discovers, so a viewer can fuzzy-search the
// growing subgraph by label rather than by exact IRI. Adapted from
// internal/entity's Bleve-backed EntityIndex: same mapping/fuzzy-query
// shape, repointed from (uid, namespace) user-graph entities to (iri,
// run_id) subgraph entities discovered by one search.
package eventindex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
)

// Config configures one Index.
type Config struct {
	IndexPath string
	InMemory  bool
	Fuzziness int
	Threshold float64
}

// DefaultConfig returns sensible defaults for a single-run, in-process
// index — most search runs don't outlive the process, so InMemory is the
// sane default and IndexPath only matters when a caller opts out of it.
func DefaultConfig() Config {
	return Config{
		IndexPath: "./data/eventindex",
		InMemory:  true,
		Fuzziness: 2,
		Threshold: 0.6,
	}
}

// Entity is one discovered node, as indexed for fuzzy lookup.
type Entity struct {
	IRI       string `json:"iri"`
	Label     string `json:"label"`
	RunID     string `json:"run_id"`
	Predicate string `json:"predicate,omitempty"`
}

// Index wraps a Bleve index over discovered subgraph entities.
type Index struct {
	index  bleve.Index
	cfg    Config
	logger *zap.Logger
	mu     sync.RWMutex
	total  int64
}

// New opens or creates the underlying Bleve index.
func New(cfg Config, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := &Index{cfg: cfg, logger: logger}
	m := idx.mapping()

	var bi bleve.Index
	var err error
	if cfg.InMemory {
		bi, err = bleve.NewMemOnly(m)
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0o755); mkErr != nil {
			return nil, fmt.Errorf("eventindex: create index dir: %w", mkErr)
		}
		bi, err = bleve.Open(cfg.IndexPath)
		if err == bleve.ErrorIndexPathDoesNotExist {
			bi, err = bleve.New(cfg.IndexPath, m)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("eventindex: open/create index: %w", err)
	}

	idx.index = bi
	return idx, nil
}

func (idx *Index) mapping() mapping.IndexMapping {
	entityMapping := bleve.NewDocumentMapping()

	label := bleve.NewTextFieldMapping()
	label.Index = true
	label.Store = true
	label.IncludeTermVectors = true
	label.IncludeInAll = true
	entityMapping.AddFieldMappingsAt("label", label)

	iri := bleve.NewTextFieldMapping()
	iri.Index = true
	iri.Store = true
	iri.IncludeInAll = false
	entityMapping.AddFieldMappingsAt("iri", iri)

	runID := bleve.NewTextFieldMapping()
	runID.Index = true
	runID.Store = true
	runID.IncludeInAll = false
	entityMapping.AddFieldMappingsAt("run_id", runID)

	m := bleve.NewIndexMapping()
	m.AddDocumentMapping("entity", entityMapping)
	m.DefaultAnalyzer = "standard"
	return m
}

// Index adds or updates one entity.
func (idx *Index) Index(ctx context.Context, e Entity) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.index.Index(e.IRI, e); err != nil {
		return fmt.Errorf("eventindex: index %q: %w", e.IRI, err)
	}
	idx.total++
	return nil
}

// BatchIndex adds every discovered entity from one iteration in a single
// Bleve batch — the search loop calls this once per iteration rather than
// once per triple, matching the teacher's BatchIndex shape.
func (idx *Index) BatchIndex(ctx context.Context, entities []Entity) error {
	if len(entities) == 0 {
		return nil
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	batch := idx.index.NewBatch()
	for _, e := range entities {
		if err := batch.Index(e.IRI, e); err != nil {
			idx.logger.Warn("eventindex: failed to add entity to batch", zap.String("iri", e.IRI), zap.Error(err))
		}
	}
	if err := idx.index.Batch(batch); err != nil {
		return fmt.Errorf("eventindex: batch index: %w", err)
	}
	idx.total += int64(len(entities))
	return nil
}

// Result is one fuzzy-search hit.
type Result struct {
	IRI   string  `json:"iri"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// FuzzyFind searches labels for term, optionally restricted to one run.
func (idx *Index) FuzzyFind(ctx context.Context, runID, term string, limit int) ([]Result, error) {
	fuzzy := query.NewFuzzyQuery(term)
	fuzzy.SetField("label")
	fuzzy.SetFuzziness(idx.cfg.Fuzziness)

	var q query.Query = fuzzy
	if runID != "" {
		runQuery := query.NewTermQuery(runID)
		runQuery.SetField("run_id")
		q = query.NewConjunctionQuery([]query.Query{fuzzy, runQuery})
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"iri", "label"}

	res, err := idx.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("eventindex: search: %w", err)
	}

	out := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if idx.cfg.Threshold > 0 && hit.Score < idx.cfg.Threshold {
			continue
		}
		r := Result{Score: hit.Score}
		if hit.Fields != nil {
			if v, ok := hit.Fields["iri"].(string); ok {
				r.IRI = v
			}
			if v, ok := hit.Fields["label"].(string); ok {
				r.Label = v
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// Close releases the underlying Bleve index.
func (idx *Index) Close() error {
	return idx.index.Close()
}

// Total returns the number of entities indexed so far.
func (idx *Index) Total() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.total
}
