package cache

import (
	"time"

	"github.com/bbernstein/dockfinder/backend-go/internal/config"
)

// fakeClock implements a mock time source for testing
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func testCacheConfig() *config.CacheConfig {
	return &config.CacheConfig{
		FeedLRUSize:          4,
		FeedTTLSeconds:       60,
		LocationListTTLHours: 24,
		GeocodeDynamoTTLDays: 30,
		EnableS3Cache:        true,
		EnableDynamoCache:    true,
	}
}
