// Package cache provides a read-through Redis cache for the hot, read-heavy
// paths: ticket listings and dashboard aggregates. Every ticket mutation
// invalidates by key prefix — invalidate-on-write, not TTL-only.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const ticketKeyPrefix = "helpdesk:tickets:"

// TicketCache caches serialized listing/report payloads keyed by a
// query fingerprint. A nil *TicketCache is a no-op, so callers never
// branch on whether caching is enabled.
type TicketCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTicketCache builds the cache; pass nil client to disable.
func NewTicketCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TicketCache {
	if client == nil {
		return nil
	}
	return &TicketCache{client: client, ttl: ttl, logger: logger}
}

// Get unmarshals the cached payload into dest; ok is false on miss.
func (c *TicketCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, ticketKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores the payload; failures are logged and swallowed.
func (c *TicketCache) Set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, ticketKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateAll drops every ticket cache entry. Called on each ticket
// mutation; coarse but correct.
func (c *TicketCache) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, ticketKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}
