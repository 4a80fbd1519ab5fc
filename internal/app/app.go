package app

import (
	"context"
	"fmt"

	"github.com/bbernstein/dockfinder/backend-go/internal/cache"
	"github.com/bbernstein/dockfinder/backend-go/internal/config"
	"github.com/bbernstein/dockfinder/backend-go/internal/feed"
	"github.com/bbernstein/dockfinder/backend-go/internal/geocode"
	"github.com/bbernstein/dockfinder/backend-go/internal/handler"
	"github.com/bbernstein/dockfinder/backend-go/internal/planner"
	"github.com/bbernstein/dockfinder/backend-go/internal/route"
	"github.com/bbernstein/dockfinder/backend-go/internal/station"
	"github.com/bbernstein/dockfinder/backend-go/pkg/http/client"
	"github.com/rs/zerolog/log"
)

// AWSClients are created lazily so deployments without S3 or DynamoDB never load AWS config
type AWSClients struct {
	NewS3Client     func(ctx context.Context) (cache.S3Client, error)
	NewDynamoClient func(ctx context.Context) (cache.DynamoDBClient, error)
}

func DefaultAWSClients() AWSClients {
	return AWSClients{
		NewS3Client: func(ctx context.Context) (cache.S3Client, error) {
			return cache.NewS3Client(ctx)
		},
		NewDynamoClient: func(ctx context.Context) (cache.DynamoDBClient, error) {
			return cache.NewDynamoClient(ctx)
		},
	}
}

// LoadProviders reads the providers file when one is configured, otherwise wraps
// the single pair of feed URLs from the environment.
func LoadProviders(cfg *config.Config) (*config.Providers, error) {
	if cfg.ProvidersFile != "" {
		return config.LoadProviders(cfg.ProvidersFile)
	}
	if cfg.StatusFeedURL == "" && cfg.InformationFeedURL == "" {
		return nil, fmt.Errorf("no bikeshare system configured: set PROVIDERS_FILE or STATUS_FEED_URL and INFORMATION_FEED_URL")
	}
	providers := config.SingleProvider("default", cfg.StatusFeedURL, cfg.InformationFeedURL)
	if err := providers.Validate(); err != nil {
		return nil, err
	}
	return providers, nil
}

// NewPlanner wires feeds, caches, geocoder and router into a planner service
func NewPlanner(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig, aws AWSClients) (*planner.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cacheCfg == nil {
		cacheCfg = config.GetCacheConfig()
	}

	providers, err := LoadProviders(cfg)
	if err != nil {
		return nil, err
	}

	feedCache, err := cache.NewFeedCache(cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing feed cache: %w", err)
	}
	feedClient := client.New(client.Options{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
	})
	fetcher, err := feed.NewFetcher(feedClient, feedCache)
	if err != nil {
		return nil, fmt.Errorf("initializing feed fetcher: %w", err)
	}

	var finderOpts []station.FinderOption
	if cacheCfg.EnableS3Cache && cfg.LocationBucket != "" && aws.NewS3Client != nil {
		s3Client, err := aws.NewS3Client(ctx)
		if err != nil {
			return nil, fmt.Errorf("initializing S3 client: %w", err)
		}
		finderOpts = append(finderOpts, station.WithS3Cache(cache.NewS3LocationCache(s3Client, cfg.LocationBucket, cacheCfg)))
	}

	finder, err := station.NewFinder(fetcher, providers, cache.NewLocationCache(cacheCfg), finderOpts...)
	if err != nil {
		return nil, fmt.Errorf("initializing station finder: %w", err)
	}

	geocodeOpts := []geocode.Option{geocode.WithTimeout(cfg.GeocodeTimeout)}
	if cacheCfg.EnableDynamoCache && cfg.GeocodeTable != "" && aws.NewDynamoClient != nil {
		dynamoClient, err := aws.NewDynamoClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("initializing DynamoDB client: %w", err)
		}
		geocodeOpts = append(geocodeOpts, geocode.WithStore(cache.NewDynamoGeocodeStore(dynamoClient, cfg.GeocodeTable, cacheCfg)))
	}

	geocoder := geocode.NewResolver(client.New(client.Options{
		BaseURL:   cfg.NominatimBaseURL,
		Timeout:   cfg.GeocodeTimeout,
		UserAgent: cfg.UserAgent,
	}), cache.NewAddressCache(), geocodeOpts...)

	router := route.NewResolver(client.New(client.Options{
		BaseURL:   cfg.OSRMBaseURL,
		Timeout:   cfg.RouteTimeout,
		UserAgent: cfg.UserAgent,
	}), cfg.OSRMProfile, cfg.RouteTimeout)

	log.Info().
		Int("systems", len(providers.Systems)).
		Bool("s3_cache", len(finderOpts) > 0).
		Bool("dynamo_cache", len(geocodeOpts) > 1).
		Msg("Nearest station service initialized")

	return planner.NewService(finder, geocoder, router), nil
}

func NewNearestHandler(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig) (*handler.NearestHandler, error) {
	service, err := NewPlanner(ctx, cfg, cacheCfg, DefaultAWSClients())
	if err != nil {
		return nil, err
	}
	return handler.NewNearestHandler(service), nil
}
