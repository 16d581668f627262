package store

import (
	"context"
	"time"

	"github.com/narrativegraph/pathfinder/internal/rdf"
	"github.com/narrativegraph/pathfinder/internal/searcherr"
	"go.uber.org/zap"
)

// RetryConfig bounds the retry-with-backoff spec §5 requires at the
// adapter call site: a transient AdapterError::Io is retried a small,
// bounded number of times with the interval growing by Backoff each
// attempt (capped at MaxInterval), the same shape op_nats.go's
// createNatsConnectionWithRetry applies to its reconnect loop.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	Backoff         float64
	MaxInterval     time.Duration
}

// DefaultRetryConfig matches the dial-retry defaults HDTConfig already uses
// elsewhere in this package, scaled down to a handful of attempts since
// this retry sits on the per-node hot path of every iteration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		Backoff:         2,
		MaxInterval:     2 * time.Second,
	}
}

// RetryingAdapter wraps an Adapter and retries Neighbours/Superclass calls
// that fail with a transient AdapterError::Io, per spec §5. NotFound and
// Cycle are never retried — they're not transient — and any error surfaced
// after the budget is exhausted is returned unwrapped so callers still see
// a plain *searcherr.AdapterError.
type RetryingAdapter struct {
	next   Adapter
	cfg    RetryConfig
	logger *zap.Logger
}

// NewRetryingAdapter wraps next with cfg's retry budget. logger must be
// non-nil.
func NewRetryingAdapter(next Adapter, cfg RetryConfig, logger *zap.Logger) *RetryingAdapter {
	return &RetryingAdapter{next: next, cfg: cfg, logger: logger.Named("retry")}
}

func (r *RetryingAdapter) Neighbours(ctx context.Context, node string, excludedPredicates []string) ([]rdf.Triple, []rdf.Triple, []rdf.Triple, error) {
	var ingoing, outgoing, specOutgoing []rdf.Triple
	err := r.withRetry(ctx, "neighbours", node, func() error {
		var innerErr error
		ingoing, outgoing, specOutgoing, innerErr = r.next.Neighbours(ctx, node, excludedPredicates)
		return innerErr
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return ingoing, outgoing, specOutgoing, nil
}

func (r *RetryingAdapter) Superclass(ctx context.Context, node string) ([]string, error) {
	var ancestors []string
	err := r.withRetry(ctx, "superclass", node, func() error {
		var innerErr error
		ancestors, innerErr = r.next.Superclass(ctx, node)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return ancestors, nil
}

// withRetry runs op, retrying only while it fails with a transient
// AdapterError::Io, up to cfg.MaxRetries additional attempts.
func (r *RetryingAdapter) withRetry(ctx context.Context, call, node string, op func() error) error {
	interval := r.cfg.InitialInterval
	var err error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		adapterErr, ok := err.(*searcherr.AdapterError)
		if !ok || adapterErr.Kind != searcherr.AdapterIO {
			return err
		}
		if attempt == r.cfg.MaxRetries {
			break
		}
		r.logger.Warn("transient adapter error, retrying",
			zap.String("call", call),
			zap.String("node", node),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return err
		case <-time.After(interval):
		}
		interval = time.Duration(float64(interval) * r.cfg.Backoff)
		if r.cfg.MaxInterval > 0 && interval > r.cfg.MaxInterval {
			interval = r.cfg.MaxInterval
		}
	}
	return err
}
