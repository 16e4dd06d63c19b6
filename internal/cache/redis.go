package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const generationKey = "feed:generation"

// Redis namespaces every key by a generation counter; Invalidate bumps the
// counter and the old entries age out on their TTL.
type Redis struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedis(client *redis.Client, log *zap.Logger) *Redis {
	return &Redis{client: client, log: log}
}

// Generation is 0 until the first Invalidate.
func (c *Redis) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return gen, nil
}

func generationScoped(key string, gen int64) string {
	return fmt.Sprintf("%s:g%d", key, gen)
}

func (c *Redis) Get(ctx context.Context, key string) (*Page, bool) {
	gen, err := c.Generation(ctx)
	if err != nil {
		c.log.Warn("feed cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	k := generationScoped(key, gen)
	raw, err := c.client.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("feed cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		c.log.Warn("feed cache entry corrupt", zap.String("key", k), zap.Error(err))
		return nil, false
	}
	return &page, true
}

// Set writes under gen. A page loaded before an Invalidate lands under the old
// generation, which no Get reads again, and ages out on its TTL.
func (c *Redis) Set(ctx context.Context, key string, gen int64, page *Page, ttl time.Duration) {
	k := generationScoped(key, gen)
	raw, err := json.Marshal(page)
	if err != nil {
		c.log.Warn("feed cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, k, raw, ttl).Err(); err != nil {
		c.log.Warn("feed cache set failed", zap.String("key", k), zap.Error(err))
	}
}

func (c *Redis) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Warn("feed cache invalidate failed", zap.Error(err))
	}
}
