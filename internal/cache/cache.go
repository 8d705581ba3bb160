package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	indexKey   = "pages:index"
	DefaultTTL = 20 * time.Second
)

// PageCache is a single-slot cache for the rendered home page. The stored
// bytes are served verbatim until the TTL runs out, so the home page may be
// up to one TTL behind the database.
type PageCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewPageCache accepts a nil client; every lookup is then a miss and stores
// are dropped, which keeps the index handler working without redis.
func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PageCache{rdb: rdb, key: indexKey, ttl: ttl}
}

func (c *PageCache) Get(ctx context.Context) ([]byte, bool) {
	if c.rdb == nil {
		return nil, false
	}
	body, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

func (c *PageCache) Set(ctx context.Context, body []byte) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key, body, c.ttl).Err(); err != nil {
		log.Printf("page cache set error: %v", err)
	}
}

// Clear drops the cached page so the next request repopulates it.
func (c *PageCache) Clear(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		log.Printf("page cache clear error: %v", err)
	}
}
