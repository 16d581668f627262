package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event is the per-iteration progress record published for live viewers
// (spec §6's event stream). It mirrors the fields of one ExpansionRecord
// plus the running subgraph size, so a subscriber never needs to re-derive
// them from the full artifact set.
type Event struct {
	RunID          string   `json:"run_id"`
	Iteration      uint32   `json:"iteration"`
	NodesExpanded  []string `json:"nodes_expanded"`
	PathChosen     string   `json:"path_chosen,omitempty"`
	Score          float64  `json:"score,omitempty"`
	SubgraphSize   int      `json:"subgraph_size"`
	UniqueEntities int      `json:"unique_entities"`
	Exit           string   `json:"exit,omitempty"`
}

// EventSink publishes per-iteration events. Implementations must tolerate
// being called every iteration of a long run without blocking it.
type EventSink interface {
	Publish(ctx context.Context, event Event)
}

// NoopSink discards every event. Used when a run has no viewers attached.
type NoopSink struct{}

// Publish implements EventSink.
func (NoopSink) Publish(context.Context, Event) {}

// NATSSink publishes events to a NATS subject, one per run, grounded on
// internal/policy's AuditLogger.publishToNATS/persistEvent: marshal to
// JSON, publish, and degrade to a log line (never fail the iteration) if
// the connection is nil or unavailable.
type NATSSink struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewNATSSink returns a sink bound to one NATS subject. conn may be nil —
// every Publish call then just logs and returns, matching how
// AuditLogger.persistEvent skips NATS when al.natsConn == nil.
func NewNATSSink(conn *nats.Conn, runID string, logger *zap.Logger) *NATSSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSSink{
		conn:    conn,
		subject: fmt.Sprintf("search.%s.iteration", runID),
		logger:  logger.Named("events"),
	}
}

// MultiSink fans one run's events out to several sinks — e.g. NATS for
// durable/off-process consumers plus an in-process WebSocket hub for live
// viewers. A panic-free, best-effort fan-out: each sink is called in turn
// regardless of whether an earlier one is slow, matching how NATSSink
// itself never lets a downstream failure abort the iteration.
type MultiSink []EventSink

// Publish calls Publish on every sink in order.
func (m MultiSink) Publish(ctx context.Context, event Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Publish(ctx, event)
		}
	}
}

// Publish marshals and publishes event, logging and swallowing any failure
// so a flaky event bus never aborts the search.
func (s *NATSSink) Publish(ctx context.Context, event Event) {
	s.logger.Debug("iteration event",
		zap.String("run_id", event.RunID),
		zap.Uint32("iteration", event.Iteration),
		zap.String("path_chosen", event.PathChosen),
		zap.Int("subgraph_size", event.SubgraphSize))

	if s.conn == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal iteration event", zap.Error(err))
		return
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		s.logger.Warn("failed to publish iteration event to NATS", zap.Error(err))
	}
}
