package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeedCache(t *testing.T) (*FeedCache, *fakeClock) {
	c, err := NewFeedCache(testCacheConfig())
	require.NoError(t, err)
	clk := &fakeClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	c.clock = clk
	return c, clk
}

func TestFeedCache_GetPut(t *testing.T) {
	c, clk := newTestFeedCache(t)
	url := "https://gbfs.example.com/station_status.json"

	_, ok := c.Get(url)
	assert.False(t, ok)

	fetchedAt := clk.Now()
	c.Put(url, []byte(`{"data":{}}`), fetchedAt)

	entry, ok := c.Get(url)
	require.True(t, ok)
	assert.Equal(t, `{"data":{}}`, string(entry.Body))
	assert.Equal(t, fetchedAt, entry.FetchedAt)

	stats := c.GetCacheStats()
	assert.Equal(t, uint64(1), stats["feed_hits"])
	assert.Equal(t, uint64(1), stats["feed_misses"])
}

func TestFeedCache_Expiry(t *testing.T) {
	c, clk := newTestFeedCache(t)
	url := "https://gbfs.example.com/station_status.json"
	c.Put(url, []byte("v1"), clk.Now())

	clk.Advance(59 * time.Second)
	_, ok := c.Get(url)
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get(url)
	assert.False(t, ok, "entry should expire once the TTL has elapsed")
}

func TestFeedCache_Invalidate(t *testing.T) {
	c, clk := newTestFeedCache(t)
	url := "https://gbfs.example.com/station_status.json"
	c.Put(url, []byte("v1"), clk.Now())

	c.Invalidate(url)
	_, ok := c.Get(url)
	assert.False(t, ok)

	c.Put(url, []byte("v2"), clk.Now())
	entry, ok := c.Get(url)
	require.True(t, ok)
	assert.Equal(t, "v2", string(entry.Body))
}

func TestFeedCache_Eviction(t *testing.T) {
	c, clk := newTestFeedCache(t)

	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("https://feed%d.example.com", i), []byte("x"), clk.Now())
	}

	_, ok := c.Get("https://feed0.example.com")
	assert.False(t, ok, "oldest entry should be evicted beyond the LRU size")
	_, ok = c.Get("https://feed4.example.com")
	assert.True(t, ok)
}

func TestNewFeedCache_InvalidSize(t *testing.T) {
	cfg := testCacheConfig()
	cfg.FeedLRUSize = 0

	_, err := NewFeedCache(cfg)
	assert.Error(t, err)
}
