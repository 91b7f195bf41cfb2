// Package cache provides Redis cache-aside helpers. A nil *Cache, or one
// without a client, is a valid cache that never hits.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emilythestrangee/queryhub/backend/internal/observability"
)

type Cache struct {
	client *redis.Client
}

// Connect dials addr (host:port or a redis:// URL). Connection problems are
// logged and yield a disabled cache.
func Connect(ctx context.Context, addr string) *Cache {
	if addr == "" {
		return &Cache{}
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			observability.Logger.Warn("invalid REDIS_URL, continuing without cache", "error", err)
			return &Cache{}
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		observability.Logger.Warn("redis unavailable, continuing without cache", "error", err)
		_ = client.Close()
		return &Cache{}
	}

	observability.Logger.Info("redis connected")
	return &Cache{client: client}
}

// New wraps an existing client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Aside loads key into dest, or calls fetch to fill dest and stores the result for ttl.
func (c *Cache) Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	if !c.Enabled() {
		return fetch()
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheResults.WithLabelValues("hit").Inc()
			return nil
		}
	case errors.Is(err, redis.Nil):
		observability.CacheResults.WithLabelValues("miss").Inc()
	default:
		observability.CacheResults.WithLabelValues("error").Inc()
		observability.Logger.Warn("cache read failed", "key", key, "error", err)
	}

	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		observability.Logger.Warn("cache write failed", "key", key, "error", err)
	}
	return nil
}

// Invalidate deletes keys; failures are logged only.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		observability.Logger.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}

// InvalidatePrefix deletes every key starting with prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if !c.Enabled() {
		return
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		observability.Logger.Warn("cache scan failed", "prefix", prefix, "error", err)
		return
	}
	c.Invalidate(ctx, keys...)
}
