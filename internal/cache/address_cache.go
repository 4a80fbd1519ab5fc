package cache

import (
	"sync"

	"github.com/bbernstein/dockfinder/backend-go/internal/models"
)

// AddressCache memoizes geocoding outcomes for the life of the process. Entries are
// never evicted; negative and unavailable outcomes are kept so they are not retried.
type AddressCache struct {
	results map[string]models.GeocodeResult
	mu      sync.RWMutex
}

func NewAddressCache() *AddressCache {
	return &AddressCache{
		results: make(map[string]models.GeocodeResult),
	}
}

func (c *AddressCache) Get(address string) (models.GeocodeResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.results[address]
	return result, ok
}

func (c *AddressCache) Put(address string, result models.GeocodeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[address] = result
}

func (c *AddressCache) Invalidate(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, address)
}

func (c *AddressCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}
