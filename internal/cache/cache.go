// Package cache stores unannotated feed pages between requests.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"captionvote/internal/config"
	"captionvote/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Page is one cached page of captions plus the unpaginated total.
type Page struct {
	Captions []models.Caption `json:"captions"`
	Total    int64            `json:"total"`
}

// FeedCache never holds per-user vote state, only item pages.
//
// Callers read Generation before loading a page from the database and hand it
// back to Set, so a page loaded before an Invalidate is never served after it.
type FeedCache interface {
	Get(ctx context.Context, key string) (*Page, bool)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, key string, gen int64, page *Page, ttl time.Duration)
	// Invalidate drops every cached page.
	Invalidate(ctx context.Context)
}

func PageKey(page, perPage int) string {
	return fmt.Sprintf("feed:page:%d:%d", page, perPage)
}

// New builds the configured backend. An unreachable Redis falls back to the in-process LRU.
func New(cfg *config.Config, log *zap.Logger) (FeedCache, error) {
	if cfg.CacheBackend != config.CacheRedis {
		return NewLRU(cfg.CacheSize)
	}

	var opts *redis.Options
	if strings.Contains(cfg.RedisURL, "://") {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", cfg.RedisURL, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.RedisURL}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, using in-process feed cache", zap.Error(err))
		_ = client.Close()
		return NewLRU(cfg.CacheSize)
	}
	log.Info("redis connected successfully")
	return NewRedis(client, log), nil
}
