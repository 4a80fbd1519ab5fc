package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bbernstein/dockfinder/backend-go/internal/config"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "station-information/"

// LocationListCacheProvider defines interface for station information list caching
type LocationListCacheProvider interface {
	GetLocations(ctx context.Context, feedURL string) ([]models.StationLocation, error)
	SaveLocations(ctx context.Context, feedURL string, locations []models.StationLocation) error
}

// S3LocationCache stores station information snapshots in S3, one object per feed URL
type S3LocationCache struct {
	client     S3Client
	bucketName string
	ttl        time.Duration
	clock      clock
}

var _ LocationListCacheProvider = (*S3LocationCache)(nil)

// LocationListCacheRecord represents the cached location list with metadata
type LocationListCacheRecord struct {
	FeedURL     string                   `json:"feedUrl"`
	Locations   []models.StationLocation `json:"locations"`
	LastUpdated int64                    `json:"lastUpdated"`
	TTL         int64                    `json:"ttl"`
}

func NewS3LocationCache(client S3Client, bucketName string, cfg *config.CacheConfig) *S3LocationCache {
	if cfg == nil {
		cfg = config.GetCacheConfig()
	}
	return &S3LocationCache{
		client:     client,
		bucketName: bucketName,
		ttl:        cfg.GetLocationListTTL(),
		clock:      systemClock{},
	}
}

// objectKey maps a feed URL to a stable S3 key
func objectKey(feedURL string) string {
	sum := sha256.Sum256([]byte(feedURL))
	return keyPrefix + hex.EncodeToString(sum[:]) + ".json"
}

// GetLocations retrieves locations from S3 if available and valid
func (c *S3LocationCache) GetLocations(ctx context.Context, feedURL string) ([]models.StationLocation, error) {
	if c.bucketName == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objectKey(feedURL)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting location snapshot from S3: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	var record LocationListCacheRecord
	if err := json.NewDecoder(result.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decoding cache record: %w", err)
	}

	if record.FeedURL != feedURL {
		log.Warn().Str("feed_url", feedURL).Str("cached_url", record.FeedURL).Msg("Location snapshot belongs to another feed")
		return nil, nil
	}

	if c.clock.Now().Unix() > record.TTL {
		log.Debug().Str("feed_url", feedURL).Msg("Location snapshot expired")
		return nil, nil
	}

	return record.Locations, nil
}

// SaveLocations saves locations to S3
func (c *S3LocationCache) SaveLocations(ctx context.Context, feedURL string, locations []models.StationLocation) error {
	if c.bucketName == "" {
		return fmt.Errorf("empty bucket name")
	}

	now := c.clock.Now().Unix()
	record := LocationListCacheRecord{
		FeedURL:     feedURL,
		Locations:   locations,
		LastUpdated: now,
		TTL:         now + int64(c.ttl.Seconds()),
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(record); err != nil {
		return fmt.Errorf("encoding cache record: %w", err)
	}

	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey(feedURL)),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("saving to S3: %w", err)
	}

	log.Debug().Int("station_count", len(locations)).Str("feed_url", feedURL).Msg("Saved location snapshot to S3")
	return nil
}
