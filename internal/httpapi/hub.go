package httpapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/narrativegraph/pathfinder/internal/search"
)

// Hub fans out one run's iteration events to every attached viewer
// connection, grounded on the teacher's Server.handleWSConnection: an
// upgrader with origin checks disabled for local/embedded use, one
// goroutine per connection, and a mutex around each connection's writes
// since gorilla/websocket forbids concurrent writers on the same conn.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu    sync.Mutex
	rooms map[string]map[*viewer]struct{}
}

type viewer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewHub returns an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.Named("hub"),
		rooms:  make(map[string]map[*viewer]struct{}),
	}
}

// ServeViewer upgrades r into a WebSocket connection subscribed to runID's
// event stream until the client disconnects. Viewers are read-only: the
// hub drains and discards any client-sent frame, replying to "ping" with
// "pong" so a browser client's keepalive doesn't trip the read deadline.
func (h *Hub) ServeViewer(w http.ResponseWriter, r *http.Request, runID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	v := &viewer{conn: conn}
	h.join(runID, v)
	h.logger.Info("viewer attached", zap.String("run_id", runID))

	defer func() {
		h.leave(runID, v)
		conn.Close()
	}()

	for {
		var msg map[string]string
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg["type"] == "ping" {
			v.mu.Lock()
			conn.WriteJSON(map[string]string{"type": "pong"})
			v.mu.Unlock()
		}
	}
}

// Broadcast sends event to every viewer currently attached to runID.
// Implements search.EventSink so a run's framework can be wired directly
// to the hub alongside (or instead of) a NATSSink.
func (h *Hub) Broadcast(event search.Event) {
	h.mu.Lock()
	viewers := make([]*viewer, 0, len(h.rooms[event.RunID]))
	for v := range h.rooms[event.RunID] {
		viewers = append(viewers, v)
	}
	h.mu.Unlock()

	for _, v := range viewers {
		v.mu.Lock()
		err := v.conn.WriteJSON(event)
		v.mu.Unlock()
		if err != nil {
			h.leave(event.RunID, v)
		}
	}
}

func (h *Hub) join(runID string, v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[runID] == nil {
		h.rooms[runID] = make(map[*viewer]struct{})
	}
	h.rooms[runID][v] = struct{}{}
}

func (h *Hub) leave(runID string, v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[runID], v)
	if len(h.rooms[runID]) == 0 {
		delete(h.rooms, runID)
	}
}

// HubSink adapts a Hub to search.EventSink for one specific run, so
// runmanager can attach it alongside search.NewNATSSink without the
// search package importing gorilla/websocket.
type HubSink struct {
	hub *Hub
}

// NewHubSink returns an EventSink broadcasting to hub.
func NewHubSink(hub *Hub) HubSink {
	return HubSink{hub: hub}
}

// Publish implements search.EventSink.
func (s HubSink) Publish(_ context.Context, event search.Event) {
	s.hub.Broadcast(event)
}
