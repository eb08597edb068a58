package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/tasklists/internal/adapter/metrics"
	"github.com/pscheid92/tasklists/internal/domain"
)

// ListCache stores each user's list overview as JSON under a short TTL.
// Mutations invalidate the entry; the TTL bounds how long a completed task
// can outlive its 24h visibility window in a cached overview.
type ListCache struct {
	rdb     goredis.Cmdable
	ttl     time.Duration
	metrics *metrics.CacheMetrics
}

func NewListCache(rdb goredis.Cmdable, ttl time.Duration, m *metrics.CacheMetrics) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl, metrics: m}
}

func listCacheKey(userID uuid.UUID) string {
	return "lists:user:" + userID.String()
}

func (c *ListCache) Get(ctx context.Context, userID uuid.UUID) ([]domain.List, bool, error) {
	data, err := c.rdb.Get(ctx, listCacheKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		c.metrics.Misses.Inc()
		return nil, false, nil
	}
	if err != nil {
		c.metrics.Errors.WithLabelValues("get").Inc()
		return nil, false, fmt.Errorf("list cache GET failed: %w", err)
	}

	var lists []domain.List
	if err := json.Unmarshal(data, &lists); err != nil {
		c.metrics.Errors.WithLabelValues("decode").Inc()
		return nil, false, fmt.Errorf("failed to decode cached lists: %w", err)
	}

	c.metrics.Hits.Inc()
	return lists, true, nil
}

func (c *ListCache) Set(ctx context.Context, userID uuid.UUID, lists []domain.List) error {
	encoded, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("failed to encode lists: %w", err)
	}
	if err := c.rdb.Set(ctx, listCacheKey(userID), encoded, c.ttl).Err(); err != nil {
		c.metrics.Errors.WithLabelValues("set").Inc()
		return fmt.Errorf("list cache SET failed: %w", err)
	}
	return nil
}

func (c *ListCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.rdb.Del(ctx, listCacheKey(userID)).Err(); err != nil {
		c.metrics.Errors.WithLabelValues("invalidate").Inc()
		return fmt.Errorf("failed to invalidate list cache: %w", err)
	}
	c.metrics.Invalidations.Inc()
	return nil
}
