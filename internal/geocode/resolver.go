package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bbernstein/dockfinder/backend-go/internal/cache"
	"github.com/bbernstein/dockfinder/backend-go/internal/geo"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/bbernstein/dockfinder/backend-go/pkg/http/client"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 10 * time.Second

// Resolver turns free-text addresses into coordinates using a Nominatim search
// endpoint. Every outcome is memoized for the life of the process; found and
// not-found answers are also written to the optional persistent store.
type Resolver struct {
	httpClient client.Interface
	cache      *cache.AddressCache
	store      cache.GeocodeStore
	timeout    time.Duration
	group      singleflight.Group
}

type Option func(*Resolver)

func WithStore(store cache.GeocodeStore) Option {
	return func(r *Resolver) {
		r.store = store
	}
}

// WithTimeout bounds each geocoder request
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func NewResolver(httpClient client.Interface, addressCache *cache.AddressCache, opts ...Option) *Resolver {
	if addressCache == nil {
		addressCache = cache.NewAddressCache()
	}
	r := &Resolver{
		httpClient: httpClient,
		cache:      addressCache,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never fails: provider problems come back as a GeocodeUnavailable result.
// A caller whose context ends early also gets GeocodeUnavailable, which is not
// cached; the lookup it started keeps running for anyone else waiting on it.
func (r *Resolver) Resolve(ctx context.Context, address string) models.GeocodeResult {
	key := strings.TrimSpace(address)
	if key == "" {
		return models.GeocodeResult{Status: models.GeocodeNotFound}
	}

	if result, ok := r.cache.Get(key); ok {
		log.Debug().Str("address", key).Str("status", string(result.Status)).Msg("Address cache HIT")
		return result
	}

	if err := ctx.Err(); err != nil {
		return unavailable("request canceled", err)
	}

	// The shared lookup outlives any single caller; r.timeout bounds it.
	ch := r.group.DoChan(key, func() (interface{}, error) {
		if result, ok := r.cache.Get(key); ok {
			return result, nil
		}
		return r.resolveMiss(context.WithoutCancel(ctx), key), nil
	})

	select {
	case <-ctx.Done():
		return unavailable("request canceled", ctx.Err())
	case res := <-ch:
		return res.Val.(models.GeocodeResult)
	}
}

func (r *Resolver) resolveMiss(ctx context.Context, address string) models.GeocodeResult {
	if result, ok := r.fromStore(ctx, address); ok {
		r.cache.Put(address, result)
		return result
	}

	result := r.lookup(ctx, address)
	if result.Status == models.GeocodeUnavailable {
		log.Warn().Err(result.Err).Str("address", address).Msg("Geocoding unavailable")
	}

	r.cache.Put(address, result)
	if result.Status != models.GeocodeUnavailable {
		r.persist(address, result)
	}
	return result
}

func (r *Resolver) fromStore(ctx context.Context, address string) (models.GeocodeResult, bool) {
	if r.store == nil {
		return models.GeocodeResult{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	record, err := r.store.GetGeocode(ctx, address)
	if err != nil {
		log.Error().Err(err).Msg("Error getting geocode from DynamoDB")
		return models.GeocodeResult{}, false
	}
	if record == nil {
		return models.GeocodeResult{}, false
	}

	log.Debug().Str("address", address).Msg("DynamoDB HIT for geocode")
	if !record.Found {
		return models.GeocodeResult{Status: models.GeocodeNotFound}, true
	}
	return models.GeocodeResult{
		Status: models.GeocodeFound,
		Point:  &models.Coordinate{Lat: record.Lat, Lon: record.Lon},
	}, true
}

func (r *Resolver) persist(address string, result models.GeocodeResult) {
	if r.store == nil {
		return
	}

	record := models.GeocodeRecord{Address: address, Found: result.Found()}
	if result.Found() {
		record.Lat = result.Point.Lat
		record.Lon = result.Point.Lon
	}

	go func() {
		if err := r.store.SaveGeocode(context.Background(), record); err != nil {
			log.Error().Err(err).Msg("Failed to save geocode to DynamoDB")
		}
	}()
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (r *Resolver) lookup(ctx context.Context, address string) models.GeocodeResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	resp, err := r.httpClient.Get(ctx, "/search?"+query.Encode())
	if err != nil {
		return unavailable("request failed", err)
	}
	if resp == nil {
		return unavailable("no response", nil)
	}
	if !resp.OK() {
		return unavailable(fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var results []searchResult
	if err := json.Unmarshal(resp.Body, &results); err != nil {
		return unavailable("decoding response", err)
	}
	if len(results) == 0 {
		log.Debug().Str("address", address).Msg("Address not found")
		return models.GeocodeResult{Status: models.GeocodeNotFound}
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return unavailable("malformed coordinates in response", nil)
	}

	point := models.Coordinate{Lat: lat, Lon: lon}
	if err := geo.Validate(point); err != nil {
		return unavailable("coordinates out of range", err)
	}

	return models.GeocodeResult{Status: models.GeocodeFound, Point: &point}
}

func unavailable(message string, err error) models.GeocodeResult {
	return models.GeocodeResult{
		Status: models.GeocodeUnavailable,
		Err:    NewUnavailableError(message, err),
	}
}
