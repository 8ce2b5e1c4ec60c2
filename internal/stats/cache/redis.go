// Package cache keeps per-user trend results in Redis.
//
// Each user has a generation counter. Trends are stored under the generation they were
// computed in, and invalidation bumps the counter, so a trend written after an
// invalidation lands on a key no reader asks for.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shahwaiz14/event-tracker/internal/stats/domain"
)

const (
	keyPrefix = "stats:trend:"
	genPrefix = "stats:trend:gen:"
)

// client is the part of *redis.Client the cache uses.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// TrendCache stores Trend values keyed by user id.
type TrendCache struct {
	client client
	ttl    time.Duration
}

// New connects to Redis. It does not verify the connection; call Ping for that.
func New(opts Options) *TrendCache {
	c := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &TrendCache{client: c, ttl: opts.TTL}
}

func key(userID string, gen int64) string {
	return keyPrefix + userID + ":" + strconv.FormatInt(gen, 10)
}

func genKey(userID string) string {
	return genPrefix + userID
}

// Generation returns the current generation of userID's statistics. A user that was
// never invalidated is at generation 0.
func (c *TrendCache) Generation(ctx context.Context, userID string) (int64, error) {
	const op = "cache.TrendCache.Generation"

	gen, err := c.client.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return gen, nil
}

// Get returns the trend cached for userID at generation gen. ok is false on a miss.
func (c *TrendCache) Get(ctx context.Context, userID string, gen int64) (domain.Trend, bool, error) {
	const op = "cache.TrendCache.Get"

	data, err := c.client.Get(ctx, key(userID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	var t domain.Trend
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return t, true, nil
}

// Set stores t for userID at generation gen with the configured TTL.
func (c *TrendCache) Set(ctx context.Context, userID string, gen int64, t domain.Trend) error {
	const op = "cache.TrendCache.Set"

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.client.Set(ctx, key(userID, gen), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate moves each of userIDs to a new generation. Trends stored under the old
// generation are left to expire.
func (c *TrendCache) Invalidate(ctx context.Context, userIDs ...string) error {
	const op = "cache.TrendCache.Invalidate"

	for _, id := range userIDs {
		if err := c.client.Incr(ctx, genKey(id)).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Ping checks that Redis is reachable.
func (c *TrendCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Stop closes the connection pool.
func (c *TrendCache) Stop() error {
	const op = "cache.TrendCache.Stop"

	if err := c.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
