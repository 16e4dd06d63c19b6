package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type lruItem struct {
	page      *Page
	expiresAt time.Time
}

// LRU is a bounded in-process cache with per-entry expiry.
type LRU struct {
	entries *lru.Cache[string, lruItem]
	now     func() time.Time

	mu  sync.Mutex // guards gen against a concurrent Set
	gen int64
}

func NewLRU(size int) (*LRU, error) {
	l, err := lru.New[string, lruItem](size)
	if err != nil {
		return nil, err
	}
	return &LRU{entries: l, now: time.Now}, nil
}

// Get returns nil, false when the key is missing or expired.
func (c *LRU) Get(_ context.Context, key string) (*Page, bool) {
	item, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(item.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return item.page, true
}

func (c *LRU) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

// Set drops the page if an Invalidate happened since gen was read.
func (c *LRU) Set(_ context.Context, key string, gen int64, page *Page, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.entries.Add(key, lruItem{page: page, expiresAt: c.now().Add(ttl)})
}

func (c *LRU) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries.Purge()
}
