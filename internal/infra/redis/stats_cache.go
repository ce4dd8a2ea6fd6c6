package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const statsKeyPrefix = "survey_batches:stats"

// CacheObserver receives hit/miss notifications.
type CacheObserver interface {
	IncCacheHit()
	IncCacheMiss()
}

// StatsCache is a read-through cache for dashboard counts and per-batch statistics.
// Entries are namespaced by a generation number. Invalidate bumps it, so every
// previously cached entry becomes unreachable at once and ages out by TTL.
type StatsCache struct {
	client   *goredis.Client
	ttl      time.Duration
	observer CacheObserver
	logger   *zap.Logger
}

func NewStatsCache(client *goredis.Client, ttl time.Duration, observer CacheObserver, logger *zap.Logger) (*StatsCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsCache{client: client, ttl: ttl, observer: observer, logger: logger}, nil
}

// Enabled reports whether lookups can ever hit. A zero TTL turns the cache off.
func (c *StatsCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *StatsCache) Dashboard(
	ctx context.Context,
	load func(context.Context) (domain.DashboardCounts, error),
) (domain.DashboardCounts, error) {
	return readThrough(ctx, c, "dashboard", load)
}

func (c *StatsCache) BatchStats(
	ctx context.Context,
	batchID string,
	load func(context.Context) (domain.BatchStatistics, error),
) (domain.BatchStatistics, error) {
	return readThrough(ctx, c, "batch:"+batchID, load)
}

func (c *StatsCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Incr(ctx, generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}

// readThrough pins the generation before loading, so a value computed from rows
// that a concurrent mutation has since replaced is never stored under the new generation.
// Redis failures degrade to a direct load.
func readThrough[T any](ctx context.Context, c *StatsCache, name string, load func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	gen, err := c.client.Get(ctx, generationKey()).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		c.logger.Warn("stats cache unavailable", zap.String("entry", name), zap.Error(err))
		return load(ctx)
	}
	key := entryKey(gen, name)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			c.hit()
			return cached, nil
		}
	case !errors.Is(err, goredis.Nil):
		c.logger.Warn("stats cache read failed", zap.String("entry", name), zap.Error(err))
		return load(ctx)
	}

	c.miss()
	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn("stats cache write failed", zap.String("entry", name), zap.Error(err))
	}
	return value, nil
}

func (c *StatsCache) hit() {
	if c.observer != nil {
		c.observer.IncCacheHit()
	}
}

func (c *StatsCache) miss() {
	if c.observer != nil {
		c.observer.IncCacheMiss()
	}
}

func generationKey() string {
	return statsKeyPrefix + ":generation"
}

func entryKey(gen int64, name string) string {
	return fmt.Sprintf("%s:%d:%s", statsKeyPrefix, gen, name)
}
