// Command search is the one-shot CLI entry point, mirroring the original
// Python's `if __name__ == "__main__"` block: load a JSON config, run the
// search loop to completion, and print the exit condition plus the
// emitted-artifact bundle spec §6 describes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/narrativegraph/pathfinder/internal/jsonx"
	"github.com/narrativegraph/pathfinder/internal/metrics"
	"github.com/narrativegraph/pathfinder/internal/runconfig"
)

func main() {
	configPath := flag.String("config", "", "path to the run config JSON file")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "search: -config is required")
		os.Exit(2)
	}

	logger, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search: building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(configPath string, logger *zap.Logger) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	var cfg runconfig.RunConfig
	if err := jsonx.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	built, err := runconfig.Assemble(ctx, cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("assembling run: %w", err)
	}
	defer built.Close()

	logger.Info("search run starting",
		zap.String("run_id", built.RunID),
		zap.String("start", cfg.Start),
		zap.Int("iterations", cfg.Iterations))

	result, err := built.Framework.Run(ctx)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	logger.Info("search run finished",
		zap.String("run_id", built.RunID),
		zap.String("exit", string(result.Exit)),
		zap.Int("iterations_run", result.IterationsRun))

	size, unique := result.Subgraph.Info()
	out := summary{
		RunID:         built.RunID,
		Exit:          string(result.Exit),
		IterationsRun: result.IterationsRun,
		SubgraphSize:  size,
		UniqueEvents:  unique,
	}
	if cfg.TypeMetrics {
		meta := result.MetricsMetadata
		out.Metadata = &meta
	}

	encoder := jsonx.NewEncoder(os.Stdout)
	return encoder.Encode(out)
}

// summary is the stdout payload: spec §6's exit condition plus the
// metadata bundle, without re-dumping the full subgraph (a driver that
// wants the row-level artifacts reads them off result.Subgraph directly
// when embedding this package, rather than through the CLI's stdout).
type summary struct {
	RunID         string            `json:"run_id"`
	Exit          string            `json:"exit"`
	IterationsRun int               `json:"iterations_run"`
	SubgraphSize  int               `json:"subgraph_size"`
	UniqueEvents  int               `json:"unique_events"`
	Metadata      *metrics.Metadata `json:"metadata,omitempty"`
}
