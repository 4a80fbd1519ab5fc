package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bbernstein/dockfinder/backend-go/internal/cache"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/bbernstein/dockfinder/backend-go/pkg/http/client"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Fetcher downloads GBFS documents, memoizing the raw body per URL. Concurrent
// fetches of the same URL share one request.
type Fetcher struct {
	httpClient client.Interface
	cache      *cache.FeedCache
	group      singleflight.Group
	now        func() time.Time

	// generations advance on Invalidate so a request that was already in flight
	// cannot repopulate the cache with the document it was asked to forget.
	mu          sync.Mutex
	generations map[string]uint64
}

func NewFetcher(httpClient client.Interface, feedCache *cache.FeedCache) (*Fetcher, error) {
	if feedCache == nil {
		var err error
		feedCache, err = cache.NewFeedCache(nil)
		if err != nil {
			return nil, err
		}
	}
	return &Fetcher{
		httpClient:  httpClient,
		cache:       feedCache,
		now:         time.Now,
		generations: make(map[string]uint64),
	}, nil
}

// FetchStatus returns the parsed station_status document at url
func (f *Fetcher) FetchStatus(ctx context.Context, url string) (*models.StatusSnapshot, error) {
	entry, err := f.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	snapshot, err := ParseStatus(entry.Body, entry.FetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing status feed %s: %w", url, err)
	}
	return snapshot, nil
}

// FetchInformation returns the parsed station_information document at url
func (f *Fetcher) FetchInformation(ctx context.Context, url string) ([]models.StationLocation, error) {
	entry, err := f.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	locations, err := ParseInformation(entry.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing information feed %s: %w", url, err)
	}
	return locations, nil
}

// Invalidate forgets the cached document so the next fetch goes to the network
func (f *Fetcher) Invalidate(url string) {
	f.mu.Lock()
	f.generations[url]++
	f.cache.Invalidate(url)
	f.mu.Unlock()

	f.group.Forget(url)
	log.Debug().Str("url", url).Msg("Feed invalidated")
}

func (f *Fetcher) generation(url string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generations[url]
}

func (f *Fetcher) fetch(ctx context.Context, url string) (*cache.FeedEntry, error) {
	if entry, ok := f.cache.Get(url); ok {
		log.Debug().Str("url", url).Msg("Feed cache HIT")
		return entry, nil
	}

	v, err, shared := f.group.Do(url, func() (interface{}, error) {
		if entry, ok := f.cache.Get(url); ok {
			return entry, nil
		}
		gen := f.generation(url)
		stats := f.cache.GetCacheStats()
		log.Debug().
			Str("url", url).
			Uint64("hits", stats["feed_hits"]).
			Uint64("misses", stats["feed_misses"]).
			Msg("Feed cache MISS, downloading")

		// Joined callers must not fail because the first one went away; the
		// client's own timeout bounds the request.
		resp, err := f.httpClient.Get(context.WithoutCancel(ctx), url)
		if err != nil {
			return nil, fmt.Errorf("fetching feed %s: %w", url, err)
		}
		if resp == nil {
			return nil, fmt.Errorf("no response from feed %s", url)
		}
		if !resp.OK() {
			return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
		}

		fetchedAt := f.now().UTC()

		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.generations[url] {
			return &cache.FeedEntry{Body: resp.Body, FetchedAt: fetchedAt}, nil
		}
		return f.cache.Put(url, resp.Body, fetchedAt), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Trace().Str("url", url).Msg("Joined in-flight feed request")
	}
	return v.(*cache.FeedEntry), nil
}
