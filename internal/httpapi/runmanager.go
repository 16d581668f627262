package httpapi

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/narrativegraph/pathfinder/internal/eventindex"
	"github.com/narrativegraph/pathfinder/internal/metrics"
	"github.com/narrativegraph/pathfinder/internal/runconfig"
	"github.com/narrativegraph/pathfinder/internal/search"
)

// RunStatus is the lifecycle state of one managed run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// ManagedRun is one active or finished search run, owned by RunManager.
type ManagedRun struct {
	RunID  string
	Status RunStatus
	Error  string

	Exit          search.ExitReason
	IterationsRun int
	SubgraphSize  int
	UniqueEvents  int
	Metadata      *metrics.Metadata

	eventIndex *eventindex.Index
	cancel     context.CancelFunc
}

// RunManager owns every run started through the daemon's admin API,
// mirroring the teacher's kernel.Kernel as the single owned-component root
// cmd/kernel/main.go's HTTP handlers delegate to — except a search daemon
// manages many concurrent runs rather than one kernel instance.
type RunManager struct {
	hub    *Hub
	logger *zap.Logger

	mu   sync.Mutex
	runs map[string]*ManagedRun
}

// NewRunManager returns an empty RunManager broadcasting every run's
// events through hub in addition to whatever NATS sink its config names.
func NewRunManager(hub *Hub, logger *zap.Logger) *RunManager {
	return &RunManager{hub: hub, logger: logger.Named("runmanager"), runs: make(map[string]*ManagedRun)}
}

// Start assembles cfg into a Framework and launches it on its own
// goroutine, returning immediately with the run ID the caller can poll or
// attach a viewer to.
func (rm *RunManager) Start(cfg runconfig.RunConfig) (string, error) {
	ctx, cancel := context.WithCancel(context.Background())

	built, err := runconfig.Assemble(ctx, cfg, rm.logger, NewHubSink(rm.hub))
	if err != nil {
		cancel()
		return "", fmt.Errorf("assembling run: %w", err)
	}

	managed := &ManagedRun{RunID: built.RunID, Status: RunStatusRunning, eventIndex: built.EventIndex, cancel: cancel}

	rm.mu.Lock()
	rm.runs[built.RunID] = managed
	rm.mu.Unlock()

	go rm.drive(ctx, built, managed)

	return built.RunID, nil
}

func (rm *RunManager) drive(ctx context.Context, built *runconfig.Built, managed *ManagedRun) {
	defer built.Close()

	result, err := built.Framework.Run(ctx)

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			managed.Status = RunStatusCancelled
		} else {
			managed.Status = RunStatusFailed
			managed.Error = SanitizeError(err)
			rm.logger.Error("run failed", zap.String("run_id", managed.RunID), zap.Error(err))
		}
		return
	}

	size, unique := result.Subgraph.Info()
	managed.Status = RunStatusCompleted
	managed.Exit = result.Exit
	managed.IterationsRun = result.IterationsRun
	managed.SubgraphSize = size
	managed.UniqueEvents = unique
	if result.MetricsMetadata != (metrics.Metadata{}) {
		meta := result.MetricsMetadata
		managed.Metadata = &meta
	}
}

// Cancel stops runID's context. The run transitions to RunStatusCancelled
// once its goroutine observes ctx.Err().
func (rm *RunManager) Cancel(runID string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run, ok := rm.runs[runID]
	if !ok {
		return false
	}
	run.cancel()
	return true
}

// Get returns a snapshot of runID's current status.
func (rm *RunManager) Get(runID string) (ManagedRun, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	run, ok := rm.runs[runID]
	if !ok {
		return ManagedRun{}, false
	}
	return *run, true
}

// FuzzySearch finds entities discovered by runID whose label fuzzy-matches
// term, or ok=false if runID is unknown.
func (rm *RunManager) FuzzySearch(ctx context.Context, runID, term string, limit int) ([]eventindex.Result, bool, error) {
	rm.mu.Lock()
	run, ok := rm.runs[runID]
	rm.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	results, err := run.eventIndex.FuzzyFind(ctx, runID, term, limit)
	return results, true, err
}
