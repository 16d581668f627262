package eventindex

import (
	"context"
	"strings"

	"github.com/narrativegraph/pathfinder/internal/search"
)

// Sink adapts an Index to search.EventSink: every expansion event's newly
// observed node IRIs are indexed under that run's label, so a viewer can
// fuzzy-search the growing subgraph while the run is still in progress.
type Sink struct {
	index *Index
	runID string
}

// NewSink returns an EventSink indexing into idx for one run.
func NewSink(idx *Index, runID string) Sink {
	return Sink{index: idx, runID: runID}
}

// Publish implements search.EventSink.
func (s Sink) Publish(ctx context.Context, event search.Event) {
	if len(event.NodesExpanded) == 0 {
		return
	}
	entities := make([]Entity, 0, len(event.NodesExpanded))
	for _, iri := range event.NodesExpanded {
		entities = append(entities, Entity{
			IRI:   iri,
			Label: labelOf(iri),
			RunID: s.runID,
		})
	}
	if err := s.index.BatchIndex(ctx, entities); err != nil {
		s.index.logger.Warn("eventindex: failed to index iteration's expanded nodes")
	}
}

// labelOf derives a human-readable label from an IRI: the fragment after
// the last '#' or '/', matching how RDF tooling conventionally displays a
// resource's local name.
func labelOf(iri string) string {
	if i := strings.LastIndexByte(iri, '#'); i >= 0 && i+1 < len(iri) {
		return iri[i+1:]
	}
	if i := strings.LastIndexByte(iri, '/'); i >= 0 && i+1 < len(iri) {
		return iri[i+1:]
	}
	return iri
}
