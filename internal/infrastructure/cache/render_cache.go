package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-diagram-workspace/pkg/helpers"
)

// RenderCache stores rendered output in redis under caller-built keys.
type RenderCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRenderCache(rdb redis.Cmdable, ttl time.Duration) *RenderCache {
	return &RenderCache{rdb: rdb, ttl: ttl}
}

func (c *RenderCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return helpers.RedisGetBytes(ctx, c.rdb, key)
}

func (c *RenderCache) Set(ctx context.Context, key string, value []byte) error {
	return helpers.RedisSetBytes(ctx, c.rdb, key, value, c.ttl)
}
