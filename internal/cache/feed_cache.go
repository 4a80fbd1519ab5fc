package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bbernstein/dockfinder/backend-go/internal/config"
	"github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// FeedEntry is a raw feed document as it was downloaded
type FeedEntry struct {
	Body      []byte
	FetchedAt time.Time
	ExpiresAt time.Time
}

// FeedCache memoizes feed documents per URL for a fixed window
type FeedCache struct {
	lru    *lru.Cache[string, *FeedEntry]
	ttl    time.Duration
	clock  clock
	mu     sync.Mutex
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewFeedCache(cfg *config.CacheConfig) (*FeedCache, error) {
	if cfg == nil {
		cfg = config.GetCacheConfig()
	}

	lruCache, err := lru.New[string, *FeedEntry](cfg.FeedLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating feed LRU cache: %w", err)
	}

	return &FeedCache{
		lru:   lruCache,
		ttl:   cfg.GetFeedTTL(),
		clock: systemClock{},
	}, nil
}

// Get returns the cached document for url if it has not expired
func (c *FeedCache) Get(url string) (*FeedEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(url)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if !c.clock.Now().Before(entry.ExpiresAt) {
		c.lru.Remove(url)
		c.misses.Add(1)
		log.Trace().Str("url", url).Msg("Feed cache entry expired")
		return nil, false
	}

	c.hits.Add(1)
	return entry, true
}

func (c *FeedCache) Put(url string, body []byte, fetchedAt time.Time) *FeedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &FeedEntry{
		Body:      body,
		FetchedAt: fetchedAt,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	}
	c.lru.Add(url, entry)
	return entry
}

// Invalidate drops the document for url so the next Get misses
func (c *FeedCache) Invalidate(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(url)
}

// GetCacheStats returns statistics about cache hits and misses
func (c *FeedCache) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"feed_hits":   c.hits.Load(),
		"feed_misses": c.misses.Load(),
	}
}
