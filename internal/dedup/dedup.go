// Package dedup guards against re-alerting the same arbitrage opportunity
// every scrape cycle. Backed by Redis, grounded on the teacher's
// internal/pkg/storage redis cache pattern and go-redis/v9.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window deduplicates arb_hash values within a sliding TTL using Redis
// SETNX semantics: the first caller to see a hash within the window gets
// true (is new), everyone else within the window gets false.
type Window struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // default 24h, the same dedup window config.Default uses
}

// New builds a Window from a Redis connection config.
func New(cfg Config) *Window {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Window{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
		prefix: "oddsentry:arb:",
	}
}

// Ping verifies the Redis connection is reachable.
func (w *Window) Ping(ctx context.Context) error {
	return w.client.Ping(ctx).Err()
}

// SeenRecently reports whether arbHash was already recorded within the
// window; if not, it atomically marks it seen so concurrent cycle workers
// don't double-alert on the same opportunity.
func (w *Window) SeenRecently(ctx context.Context, arbHash string) (bool, error) {
	key := w.prefix + arbHash
	ok, err := w.client.SetNX(ctx, key, 1, w.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup: setnx: %w", err)
	}
	return !ok, nil // SetNX returns true when the key was newly set, i.e. NOT seen before
}

// Close releases the Redis client.
func (w *Window) Close() error {
	return w.client.Close()
}

// OddsCache is an optional read-through cache of current-odds rows, keyed by
// match, to take read pressure off Postgres during a scrape cycle fan-out.
type OddsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOddsCache builds an OddsCache sharing the dedup Window's Redis config
// conventions but with its own (much shorter) TTL.
func NewOddsCache(cfg Config, ttl time.Duration) *OddsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &OddsCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

func (c *OddsCache) Get(ctx context.Context, matchID string) (string, error) {
	v, err := c.client.Get(ctx, "oddsentry:odds:"+matchID).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

func (c *OddsCache) Set(ctx context.Context, matchID, payload string) error {
	return c.client.Set(ctx, "oddsentry:odds:"+matchID, payload, c.ttl).Err()
}

func (c *OddsCache) Close() error {
	return c.client.Close()
}
