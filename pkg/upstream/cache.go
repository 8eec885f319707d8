package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ResponseCache is a two-tier cache for upstream responses: an in-process
// expirable LRU backed by an optional shared Redis tier. A Redis outage
// degrades to memory-only operation rather than failing the fetch.
type ResponseCache struct {
	memory *lru.LRU[string, []byte]
	redis  *redis.Client
	ttl    time.Duration
	prefix string

	// onHit/onMiss feed the cache metrics; either may be nil.
	onHit  func(tier string)
	onMiss func()
}

// NewResponseCache builds a cache holding up to maxEntries responses for
// ttl. redisClient may be nil for memory-only caching.
func NewResponseCache(maxEntries int, ttl time.Duration, redisClient *redis.Client) *ResponseCache {
	if maxEntries < 16 {
		maxEntries = 16
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResponseCache{
		memory: lru.NewLRU[string, []byte](maxEntries, nil, ttl),
		redis:  redisClient,
		ttl:    ttl,
		prefix: "regionpulse:upstream:",
	}
}

// Instrument registers hit/miss callbacks.
func (c *ResponseCache) Instrument(onHit func(tier string), onMiss func()) {
	c.onHit = onHit
	c.onMiss = onMiss
}

// Get returns a cached response body for the endpoint, checking memory
// before Redis. A Redis hit is promoted into the memory tier.
func (c *ResponseCache) Get(ctx context.Context, endpoint string) ([]byte, bool) {
	key := cacheKey(endpoint)

	if body, ok := c.memory.Get(key); ok {
		c.hit("memory")
		return body, true
	}

	if c.redis != nil {
		body, err := c.redis.Get(ctx, c.prefix+key).Bytes()
		if err == nil {
			c.memory.Add(key, body)
			c.hit("redis")
			return body, true
		}
	}

	if c.onMiss != nil {
		c.onMiss()
	}
	return nil, false
}

// Set stores a response body in both tiers. Redis write failures are
// ignored; the memory tier still serves.
func (c *ResponseCache) Set(ctx context.Context, endpoint string, body []byte) {
	key := cacheKey(endpoint)
	c.memory.Add(key, body)
	if c.redis != nil {
		c.redis.Set(ctx, c.prefix+key, body, c.ttl)
	}
}

// Purge drops every memory-tier entry. Intended for tests.
func (c *ResponseCache) Purge() {
	c.memory.Purge()
}

func (c *ResponseCache) hit(tier string) {
	if c.onHit != nil {
		c.onHit(tier)
	}
}

func cacheKey(endpoint string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return hex.EncodeToString(sum[:16])
}
