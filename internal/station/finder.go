package station

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bbernstein/dockfinder/backend-go/internal/cache"
	"github.com/bbernstein/dockfinder/backend-go/internal/config"
	"github.com/bbernstein/dockfinder/backend-go/internal/geo"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

// FeedSource supplies parsed GBFS documents
type FeedSource interface {
	FetchStatus(ctx context.Context, url string) (*models.StatusSnapshot, error)
	FetchInformation(ctx context.Context, url string) ([]models.StationLocation, error)
	Invalidate(url string)
}

// Finder answers nearest-station queries against live feeds of the configured systems
type Finder struct {
	feeds     FeedSource
	providers *config.Providers
	memCache  *cache.LocationCache
	s3Cache   cache.LocationListCacheProvider

	missingLocation atomic.Uint64
	invalidLocation atomic.Uint64

	// information URLs whose next read must bypass the memory and S3 tiers
	mu      sync.Mutex
	refresh map[string]bool
}

var _ models.StationFinder = (*Finder)(nil)

type FinderOption func(*Finder)

// WithS3Cache adds a persistent tier for station information lists
func WithS3Cache(s3Cache cache.LocationListCacheProvider) FinderOption {
	return func(f *Finder) {
		f.s3Cache = s3Cache
	}
}

func NewFinder(feeds FeedSource, providers *config.Providers, memCache *cache.LocationCache, opts ...FinderOption) (*Finder, error) {
	if feeds == nil {
		return nil, fmt.Errorf("feed source is required")
	}
	if providers == nil || len(providers.Systems) == 0 {
		return nil, fmt.Errorf("at least one bikeshare system is required")
	}
	if memCache == nil {
		memCache = cache.NewLocationCache(nil) // Use default config
	}

	f := &Finder{
		feeds:     feeds,
		providers: providers,
		memCache:  memCache,
		refresh:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Finder) FindNearestBike(ctx context.Context, systemID string, point models.Coordinate, modes []string) (*models.StationRef, error) {
	if err := geo.Validate(point); err != nil {
		return nil, err
	}
	if len(modes) == 0 {
		return nil, &InvalidModesError{Message: "at least one bike mode is required"}
	}

	rows, err := f.joinedStations(ctx, systemID)
	if err != nil {
		return nil, err
	}

	ref, excluded, err := nearestBike(point, rows, modes)
	f.record(excluded)
	return ref, err
}

func (f *Finder) FindNearestDock(ctx context.Context, systemID string, point models.Coordinate) (*models.StationRef, error) {
	if err := geo.Validate(point); err != nil {
		return nil, err
	}

	rows, err := f.joinedStations(ctx, systemID)
	if err != nil {
		return nil, err
	}

	ref, excluded, err := nearestDock(point, rows)
	f.record(excluded)
	return ref, err
}

// Stats returns how many eligible rows were dropped for lack of a usable location
func (f *Finder) Stats() map[string]uint64 {
	return map[string]uint64{
		"missing_location": f.missingLocation.Load(),
		"invalid_location": f.invalidLocation.Load(),
	}
}

// Invalidate drops every cached document of a system. The next query reads both
// feeds from the network and overwrites the S3 snapshot of station locations.
func (f *Finder) Invalidate(systemID string) error {
	provider, ok := f.providers.Lookup(systemID)
	if !ok {
		return &UnknownSystemError{SystemID: systemID}
	}

	f.mu.Lock()
	f.refresh[provider.InformationURL] = true
	f.mu.Unlock()

	f.feeds.Invalidate(provider.StatusURL)
	f.feeds.Invalidate(provider.InformationURL)
	f.memCache.Invalidate(provider.InformationURL)

	log.Info().Str("system", provider.ID).Msg("Station feeds invalidated")
	return nil
}

func (f *Finder) needsRefresh(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh[url]
}

func (f *Finder) refreshed(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refresh, url)
}

func (f *Finder) record(excluded Exclusions) {
	if excluded.MissingLocation == 0 && excluded.InvalidLocation == 0 {
		return
	}
	f.missingLocation.Add(uint64(excluded.MissingLocation))
	f.invalidLocation.Add(uint64(excluded.InvalidLocation))

	stats := f.Stats()
	log.Warn().
		Int("missing_location", excluded.MissingLocation).
		Int("invalid_location", excluded.InvalidLocation).
		Uint64("missing_location_total", stats["missing_location"]).
		Uint64("invalid_location_total", stats["invalid_location"]).
		Msg("Eligible stations excluded for lack of a usable location")
}

func (f *Finder) joinedStations(ctx context.Context, systemID string) ([]models.JoinedStation, error) {
	provider, ok := f.providers.Lookup(systemID)
	if !ok {
		return nil, &UnknownSystemError{SystemID: systemID}
	}

	snapshot, err := f.feeds.FetchStatus(ctx, provider.StatusURL)
	if err != nil {
		return nil, fmt.Errorf("getting station status: %w", err)
	}

	locations, err := f.getLocations(ctx, provider.InformationURL)
	if err != nil {
		return nil, fmt.Errorf("getting station locations: %w", err)
	}

	log.Debug().
		Str("system", provider.ID).
		Int("statuses", len(snapshot.Stations)).
		Int("locations", len(locations)).
		Time("fetched_at", snapshot.FetchedAt).
		Msg("Joining station feeds")

	return Join(snapshot.Stations, locations), nil
}

func (f *Finder) getLocations(ctx context.Context, url string) ([]models.StationLocation, error) {
	refresh := f.needsRefresh(url)

	// Check memory cache first
	if locations := f.memCache.GetLocations(url); locations != nil && !refresh {
		log.Debug().Str("url", url).Msg("Memory cache HIT for station locations")
		return locations, nil
	}

	if f.s3Cache != nil && !refresh {
		locations, err := f.s3Cache.GetLocations(ctx, url)
		if err != nil {
			log.Error().Err(err).Msg("Error getting station locations from S3 cache")
		} else if locations != nil {
			log.Debug().Str("url", url).Msg("S3 cache HIT for station locations")
			f.memCache.SetLocations(url, locations)
			return locations, nil
		}
	}

	log.Debug().Str("url", url).Msg("Cache MISS for station locations, fetching feed")

	locations, err := f.feeds.FetchInformation(ctx, url)
	if err != nil {
		return nil, err
	}

	if f.s3Cache != nil {
		go func() {
			if err := f.s3Cache.SaveLocations(context.Background(), url, locations); err != nil {
				log.Error().Err(err).Msg("Failed to save station locations to S3 cache")
			}
		}()
	}

	f.memCache.SetLocations(url, locations)
	if refresh {
		f.refreshed(url)
	}
	return locations, nil
}
