package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenCache is an optional Redis fast path in front of the dedup insert.
// URLs observed recently are dropped before reaching Postgres; Postgres
// stays the source of truth, so a cold or lossy cache only costs a no-op
// insert. A nil *SeenCache disables the fast path.
type SeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeenCache(addr string, ttl time.Duration) *SeenCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &SeenCache{client: rdb, ttl: ttl}
}

func (c *SeenCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Seen reports whether url was marked within the TTL window.
func (c *SeenCache) Seen(ctx context.Context, url string) (bool, error) {
	if c == nil {
		return false, nil
	}
	key := fmt.Sprintf("seen:%s", url)
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Mark records url for the TTL window.
func (c *SeenCache) Mark(ctx context.Context, url string) error {
	if c == nil {
		return nil
	}
	key := fmt.Sprintf("seen:%s", url)
	return c.client.Set(ctx, key, "1", c.ttl).Err()
}
