package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// Feed document cache (in memory, keyed by URL)
	FeedLRUSize    int
	FeedTTLSeconds int

	// Station information list, memory and S3 tiers
	LocationListTTLHours int

	// Persistent geocoding results in DynamoDB
	GeocodeDynamoTTLDays int

	EnableS3Cache     bool
	EnableDynamoCache bool
}

const (
	defaultFeedLRUSize          = 64
	defaultFeedTTLSeconds       = 60
	defaultLocationListTTLHours = 24
	defaultGeocodeDynamoTTLDays = 30
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		FeedLRUSize:          getEnvInt("CACHE_FEED_LRU_SIZE", defaultFeedLRUSize),
		FeedTTLSeconds:       getEnvInt("CACHE_FEED_TTL_SECONDS", defaultFeedTTLSeconds),
		LocationListTTLHours: getEnvInt("CACHE_LOCATION_LIST_TTL_HOURS", defaultLocationListTTLHours),
		GeocodeDynamoTTLDays: getEnvInt("CACHE_GEOCODE_DYNAMO_TTL_DAYS", defaultGeocodeDynamoTTLDays),
		EnableS3Cache:        getEnvBool("CACHE_ENABLE_S3", true),
		EnableDynamoCache:    getEnvBool("CACHE_ENABLE_DYNAMO", true),
	}

	log.Debug().
		Int("FeedLRUSize", config.FeedLRUSize).
		Int("FeedTTLSeconds", config.FeedTTLSeconds).
		Int("LocationListTTLHours", config.LocationListTTLHours).
		Int("GeocodeDynamoTTLDays", config.GeocodeDynamoTTLDays).
		Bool("EnableS3Cache", config.EnableS3Cache).
		Bool("EnableDynamoCache", config.EnableDynamoCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetFeedTTL() time.Duration {
	return time.Duration(c.FeedTTLSeconds) * time.Second
}

func (c *CacheConfig) GetLocationListTTL() time.Duration {
	return time.Duration(c.LocationListTTLHours) * time.Hour
}

func (c *CacheConfig) GetGeocodeDynamoTTL() time.Duration {
	return time.Duration(c.GeocodeDynamoTTLDays) * 24 * time.Hour
}
