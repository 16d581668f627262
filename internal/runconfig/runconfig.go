// Package runconfig decodes the JSON run-request config spec §6 describes
// (the `start`/`iterations`/`type_ranking`/... table) and assembles every
// component a search.Framework needs from it. Both cmd/search and
// cmd/searchd share this package so the two entry points can never drift
// on how a config key maps to a component, mirroring how cmd/kernel/main.go
// builds its kernel.Config once and hands it to a single constructor.
package runconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/narrativegraph/pathfinder/internal/datasetconfig"
	"github.com/narrativegraph/pathfinder/internal/eventindex"
	"github.com/narrativegraph/pathfinder/internal/expansion"
	"github.com/narrativegraph/pathfinder/internal/metrics"
	"github.com/narrativegraph/pathfinder/internal/narrative"
	"github.com/narrativegraph/pathfinder/internal/ordering"
	"github.com/narrativegraph/pathfinder/internal/ranker"
	"github.com/narrativegraph/pathfinder/internal/search"
	"github.com/narrativegraph/pathfinder/internal/selector"
	"github.com/narrativegraph/pathfinder/internal/store"
)

// TypePair is one (label, IRI) entry of the `rdf_type` config key.
type TypePair struct {
	Label string `json:"label"`
	IRI   string `json:"iri"`
}

// RunConfig is the JSON shape of spec §6's configuration table.
type RunConfig struct {
	Start      string `json:"start"`
	Iterations int    `json:"iterations"`
	TargetNode string `json:"target_node,omitempty"`

	TypeRanking  ranker.Rule   `json:"type_ranking"`
	NodeSelect   selector.Mode `json:"node_selection,omitempty"`
	SelectSeed   uint64        `json:"selection_seed,omitempty"`
	Parallelism  string        `json:"parallelism,omitempty"` // "sequential" | "pool:<n>"

	TypeInterface string `json:"type_interface"` // "hdt" | "remote"
	DatasetType   string `json:"dataset_type,omitempty"`
	DatasetPath   string `json:"dataset_path,omitempty"`
	RemoteURL     string `json:"remote_url,omitempty"`

	RDFType         []TypePair `json:"rdf_type,omitempty"`
	PredicateFilter []string   `json:"predicate_filter,omitempty"`
	ExcludeCategory bool       `json:"exclude_category,omitempty"`

	Ordering struct {
		DomainRange bool `json:"domain_range,omitempty"`
	} `json:"ordering"`

	Filtering struct {
		What  bool `json:"what,omitempty"`
		Where bool `json:"where,omitempty"`
		When  bool `json:"when,omitempty"`
	} `json:"filtering"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	GoldStandard []string          `json:"gold_standard,omitempty"`
	Referents    map[string]string `json:"referents,omitempty"`
	TypeMetrics  bool              `json:"type_metrics,omitempty"`

	NameExp string `json:"name_exp,omitempty"`

	NATSURL  string `json:"nats_url,omitempty"`
	RedisURL string `json:"redis_url,omitempty"`
	RunID    string `json:"run_id,omitempty"`
}

// Built is every live component a Framework needs, returned by Assemble so
// a caller (cmd/search, or cmd/searchd's run manager) can wire a sink,
// run, and tear resources down afterward.
type Built struct {
	Framework  *search.Framework
	NATSConn   *nats.Conn
	RedisConn  *redis.Client
	EventIndex *eventindex.Index
	RunID      string
}

// Assemble turns cfg into a ready-to-run Framework plus the shared
// connections it was given, so the caller can Close them after Run
// returns. logger must be non-nil. extraSink, if non-nil, is fanned out to
// alongside the NATS sink cmd/searchd uses to also broadcast over an
// in-process WebSocket hub; cmd/search always passes nil.
func Assemble(ctx context.Context, cfg RunConfig, logger *zap.Logger, extraSink search.EventSink) (*Built, error) {
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	var natsConn *nats.Conn
	var redisConn *redis.Client
	var err error

	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn("nats connect failed, continuing without event stream", zap.Error(err))
			natsConn = nil
		}
	}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn("invalid redis_url, continuing with L1-only cache", zap.Error(err))
		} else {
			redisConn = redis.NewClient(opts)
		}
	}

	dsType := datasetconfig.Type(cfg.DatasetType)
	var ds datasetconfig.Config
	if dsType != "" {
		ds, err = datasetconfig.Load(datasetconfig.DefaultPath(dsType))
		if err != nil {
			return nil, fmt.Errorf("runconfig: loading dataset config: %w", err)
		}
	}

	excluded := append([]string{}, cfg.PredicateFilter...)
	if cfg.Filtering.What && ds.RDFType != "" {
		excluded = append(excluded, ds.RDFType)
	}

	var targetTypes []string
	for _, p := range cfg.RDFType {
		targetTypes = append(targetTypes, p.IRI)
	}

	postFilter := store.PostFilterConfig{
		ExcludeCategories: cfg.ExcludeCategory,
	}

	var adapter store.Adapter
	var cache *store.SuperclassCache
	if cfg.TypeInterface == "remote" {
		adapter = store.NewRemoteAdapter(store.RemoteConfig{
			BaseURL:        cfg.RemoteURL,
			RequestTimeout: 30 * time.Second,
			MetaPredicates: ds.PointInTime,
			PostFilter:     postFilter,
		}, logger)
	} else {
		cache, err = store.NewSuperclassCache(0, 0, redisConn, logger)
		if err != nil {
			return nil, fmt.Errorf("runconfig: building superclass cache: %w", err)
		}
		adapter, err = store.NewHDTAdapter(ctx, store.HDTConfig{
			Address:        cfg.DatasetPath,
			MaxRetries:     5,
			RetryInterval:  time.Second,
			RequestTimeout: 30 * time.Second,
			RDFType:        ds.RDFType,
			SubClassOf:     "http://www.w3.org/2000/01/rdf-schema#subClassOf",
			OwlThing:       "http://www.w3.org/2002/07/owl#Thing",
			MetaPredicates: ds.PointInTime,
			PostFilter:     postFilter,
		}, cache, logger)
		if err != nil {
			return nil, fmt.Errorf("runconfig: dialing hdt adapter: %w", err)
		}
	}
	adapter = store.NewRetryingAdapter(adapter, store.DefaultRetryConfig(), logger)

	narrativeCfg := narrative.Config{
		Where:               cfg.Filtering.Where,
		When:                cfg.Filtering.When,
		StartDate:           cfg.StartDate,
		EndDate:             cfg.EndDate,
		RDFType:             ds.RDFType,
		DatePredicates:      ds.PointInTime,
		StartDatePredicates: ds.StartDates,
		EndDatePredicates:   ds.EndDates,
		PlaceClasses:        ds.Places,
	}
	filter, err := narrative.New(narrativeCfg, logger)
	if err != nil {
		return nil, err
	}

	resolver, ok := adapter.(ordering.SuperclassResolver)
	if !ok {
		return nil, fmt.Errorf("runconfig: adapter %T does not resolve superclasses", adapter)
	}
	ord := ordering.New(ordering.Config{
		DomainRange: cfg.Ordering.DomainRange,
		TargetTypes: targetTypes,
	}, resolver)

	expander := expansion.New(adapter, filter, ord, excluded, logger)

	rank, err := ranker.New(cfg.TypeRanking)
	if err != nil {
		return nil, err
	}

	selMode := cfg.NodeSelect
	if selMode == "" {
		selMode = selector.All
	}
	sel, err := selector.New(selMode, cfg.SelectSeed)
	if err != nil {
		return nil, err
	}

	eventIdx, err := eventindex.New(eventindex.DefaultConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("runconfig: building event index: %w", err)
	}

	var sinks search.MultiSink
	if natsConn != nil {
		sinks = append(sinks, search.NewNATSSink(natsConn, runID, logger))
	}
	if extraSink != nil {
		sinks = append(sinks, extraSink)
	}
	sinks = append(sinks, eventindex.NewSink(eventIdx, runID))
	var sink search.EventSink = search.NoopSink{}
	if len(sinks) > 0 {
		sink = sinks
	}

	var tracker *metrics.Tracker
	referents := metrics.Referents(cfg.Referents)
	if cfg.TypeMetrics {
		tracker = metrics.NewTracker(cfg.GoldStandard, referents, time.Now().UTC().Format(time.RFC3339))
	}

	fwCfg := search.Config{
		Start:              cfg.Start,
		Iterations:         cfg.Iterations,
		TargetNode:         cfg.TargetNode,
		RunID:              runID,
		ParallelismWorkers: parseParallelism(cfg.Parallelism),
		SelectionMode:      selMode,
		SelectionSeed:      cfg.SelectSeed,
		RankingRule:        cfg.TypeRanking,
		Metrics:            cfg.TypeMetrics,
		GoldStandard:       cfg.GoldStandard,
		Referents:          referents,
	}

	fw, err := search.New(fwCfg, expander, rank, sel, sink, tracker, logger)
	if err != nil {
		return nil, err
	}

	return &Built{Framework: fw, NATSConn: natsConn, RedisConn: redisConn, EventIndex: eventIdx, RunID: runID}, nil
}

// Close releases the connections and in-process resources a Built run was
// given. Safe to call with a zero-value Built or nil fields. EventIndex is
// left open — the run's caller (RunManager) keeps it alive for fuzzy
// lookups after the run finishes, closing it only when the run itself is
// evicted.
func (b *Built) Close() {
	if b == nil {
		return
	}
	if b.NATSConn != nil {
		b.NATSConn.Close()
	}
	if b.RedisConn != nil {
		b.RedisConn.Close()
	}
}

// parseParallelism resolves spec §9's Open Question per SPEC_FULL.md §6:
// "sequential" or "pool:<n>" (defaulting to sequential, i.e. 0 workers,
// when unset or unrecognised).
func parseParallelism(p string) int {
	if p == "" || p == "sequential" {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(p, "pool:%d", &n); err != nil || n <= 0 {
		return 0
	}
	return n
}
