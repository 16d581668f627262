package httpapi

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/narrativegraph/pathfinder/internal/search"
)

func TestHubBroadcastWithNoViewersIsANoop(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))

	// No viewer has joined run-1; Broadcast must not panic or block.
	hub.Broadcast(search.Event{RunID: "run-1", Iteration: 1})
}

func TestHubSinkDelegatesToBroadcast(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	sink := NewHubSink(hub)

	// With no attached viewers this only exercises that Publish forwards to
	// Hub.Broadcast without error.
	sink.Publish(context.Background(), search.Event{RunID: "run-1"})
}
