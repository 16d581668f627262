package store

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/narrativegraph/pathfinder/internal/jsonx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SuperclassCache memoizes Adapter.Superclass lookups across a run —
// rdfs:subClassOf chains are re-walked constantly as the same handful of
// entity types recur across thousands of triples. Two-tier, adapted from
// internal/cache's Ristretto+Redis L1Cache: an in-process Ristretto cache
// takes the hot path, an optional shared Redis instance lets a fleet of
// search workers over the same dataset avoid re-walking the same chain.
type SuperclassCache struct {
	l1     *ristretto.Cache[string, []byte]
	l2     *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSuperclassCache builds a cache with the given L1 cost budget (item
// count) and entry TTL. redisClient may be nil, in which case the cache
// degrades to L1-only.
func NewSuperclassCache(l1MaxCost int64, ttl time.Duration, redisClient *redis.Client, logger *zap.Logger) (*SuperclassCache, error) {
	if l1MaxCost == 0 {
		l1MaxCost = 50000
	}
	if ttl == 0 {
		ttl = 10 * time.Minute
	}

	l1, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: l1MaxCost * 10,
		MaxCost:     l1MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &SuperclassCache{
		l1:     l1,
		l2:     redisClient,
		ttl:    ttl,
		logger: logger.Named("superclass_cache"),
	}, nil
}

func cacheKey(node string) string {
	return "superclass:" + node
}

// Get returns the cached superclass set for node, if present at either
// tier.
func (c *SuperclassCache) Get(ctx context.Context, node string) ([]string, bool) {
	key := cacheKey(node)

	if raw, found := c.l1.Get(key); found {
		return decodeSuperclasses(raw), true
	}

	if c.l2 != nil {
		raw, err := c.l2.Get(ctx, key).Bytes()
		if err == nil && len(raw) > 0 {
			c.l1.Set(key, raw, int64(len(raw)))
			return decodeSuperclasses(raw), true
		}
	}

	return nil, false
}

// Set stores the resolved superclass set for node at both tiers.
func (c *SuperclassCache) Set(ctx context.Context, node string, superclasses []string) {
	key := cacheKey(node)
	raw := encodeSuperclasses(superclasses)

	c.l1.Set(key, raw, int64(len(raw)))

	if c.l2 != nil {
		if err := c.l2.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("superclass cache L2 set failed", zap.String("node", node), zap.Error(err))
		}
	}
}

func encodeSuperclasses(vals []string) []byte {
	b, _ := jsonx.Marshal(vals)
	return b
}

func decodeSuperclasses(raw []byte) []string {
	var vals []string
	if err := jsonx.Unmarshal(raw, &vals); err != nil {
		return nil
	}
	return vals
}

// joinIRIs flattens a resolved superclass set into one zap field, used by
// HDTAdapter.Superclass's debug log instead of logging a []string directly.
func joinIRIs(vals []string) string {
	return strings.Join(vals, ",")
}
