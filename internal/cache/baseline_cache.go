package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/trainpulse/trainpulse-ai-go/internal/readiness"
)

// BaselineCacheEntry wraps cached baselines with cache metadata.
type BaselineCacheEntry struct {
	Baselines readiness.Baselines `json:"baselines"`
	CachedAt  time.Time           `json:"cached_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// BaselineCacheStats tracks cache performance counters.
type BaselineCacheStats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Sets          int64 `json:"sets"`
	Invalidations int64 `json:"invalidations"`
	mu            sync.RWMutex
}

// RedisBaselineCache caches computed personal baselines keyed by user and
// date so repeated scoring calls for the same day skip the 30-day history
// query. New metric writes for a user must invalidate the entry.
type RedisBaselineCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *BaselineCacheStats
	prefix string
	logger *logrus.Logger
}

// NewRedisBaselineCache creates a baseline cache on top of an existing redis
// client.
func NewRedisBaselineCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisBaselineCache {
	return &RedisBaselineCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &BaselineCacheStats{},
		prefix: "baseline_cache:",
		logger: logger,
	}
}

func (c *RedisBaselineCache) key(userID string, date time.Time) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, userID, date.Format("2006-01-02"))
}

// Get retrieves cached baselines for a user and date.
func (c *RedisBaselineCache) Get(ctx context.Context, userID string, date time.Time) (readiness.Baselines, bool) {
	data, err := c.redis.Get(ctx, c.key(userID, date)).Result()
	if err == redis.Nil {
		c.miss()
		return readiness.Baselines{}, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Redis error getting cached baselines")
		c.miss()
		return readiness.Baselines{}, false
	}

	var entry BaselineCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Error deserializing cached baselines")
		c.miss()
		return readiness.Baselines{}, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()

	return entry.Baselines, true
}

// Set stores baselines for a user and date with the configured TTL.
func (c *RedisBaselineCache) Set(ctx context.Context, userID string, date time.Time, baselines readiness.Baselines) {
	now := time.Now()
	entry := BaselineCacheEntry{
		Baselines: baselines,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Error serializing baselines")
		return
	}

	if err := c.redis.Set(ctx, c.key(userID, date), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Redis error setting cached baselines")
		return
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
}

// Invalidate drops every cached baseline for a user. Called when a new daily
// metric arrives, since it changes the history behind the means.
func (c *RedisBaselineCache) Invalidate(ctx context.Context, userID string) {
	pattern := c.prefix + userID + ":*"

	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Redis error scanning baseline keys")
		return
	}

	if len(keys) > 0 {
		if err := c.redis.Del(ctx, keys...).Err(); err != nil {
			c.logger.WithError(err).WithField("user_id", userID).Warn("Redis error invalidating baselines")
			return
		}
	}

	c.stats.mu.Lock()
	c.stats.Invalidations++
	c.stats.mu.Unlock()
}

// GetStats returns a snapshot of the cache counters.
func (c *RedisBaselineCache) GetStats() BaselineCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return BaselineCacheStats{
		Hits:          c.stats.Hits,
		Misses:        c.stats.Misses,
		Sets:          c.stats.Sets,
		Invalidations: c.stats.Invalidations,
	}
}

func (c *RedisBaselineCache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
