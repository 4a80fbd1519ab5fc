package cache

import (
	"sync"
	"time"

	"github.com/bbernstein/dockfinder/backend-go/internal/config"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
)

type locationEntry struct {
	locations   []models.StationLocation
	lastUpdated time.Time
}

// LocationCache keeps parsed station information lists in memory, keyed by feed URL
type LocationCache struct {
	entries map[string]locationEntry
	ttl     time.Duration
	clock   clock
	mu      sync.RWMutex
}

func NewLocationCache(cfg *config.CacheConfig) *LocationCache {
	if cfg == nil {
		cfg = config.GetCacheConfig()
	}
	return &LocationCache{
		entries: make(map[string]locationEntry),
		ttl:     cfg.GetLocationListTTL(),
		clock:   systemClock{},
	}
}

func (c *LocationCache) GetLocations(url string) []models.StationLocation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[url]
	if !ok || c.clock.Now().Sub(entry.lastUpdated) > c.ttl {
		return nil
	}
	return entry.locations
}

func (c *LocationCache) SetLocations(url string, locations []models.StationLocation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = locationEntry{
		locations:   locations,
		lastUpdated: c.clock.Now(),
	}
}

func (c *LocationCache) Invalidate(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}
