package cache

import (
	"context"
	"time"
)

// maxTTLCache caps the lifetime of every entry written through it.
type maxTTLCache struct {
	Cache
	max time.Duration
}

// WithMaxTTL returns a cache whose Set never stores an entry for longer
// than max. A non-positive max returns c unchanged.
func WithMaxTTL(c Cache, max time.Duration) Cache {
	if max <= 0 {
		return c
	}
	return &maxTTLCache{Cache: c, max: max}
}

func (c *maxTTLCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.max {
		ttl = c.max
	}
	return c.Cache.Set(ctx, key, data, ttl)
}
