package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bbernstein/dockfinder/backend-go/internal/cache"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/bbernstein/dockfinder/backend-go/pkg/http/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGeocodeStore struct {
	getGeocodeFunc  func(ctx context.Context, address string) (*models.GeocodeRecord, error)
	saveGeocodeFunc func(ctx context.Context, record models.GeocodeRecord) error
}

func (m *mockGeocodeStore) GetGeocode(ctx context.Context, address string) (*models.GeocodeRecord, error) {
	if m.getGeocodeFunc != nil {
		return m.getGeocodeFunc(ctx, address)
	}
	return nil, nil
}

func (m *mockGeocodeStore) SaveGeocode(ctx context.Context, record models.GeocodeRecord) error {
	if m.saveGeocodeFunc != nil {
		return m.saveGeocodeFunc(ctx, record)
	}
	return nil
}

// nominatim serves canned answers keyed by the q parameter and counts requests
func nominatim(t *testing.T, answers map[string]string, calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "bikeshare-app", r.Header.Get("User-Agent"))

		body, ok := answers[r.URL.Query().Get("q")]
		if !ok {
			body = "[]"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func newTestClient(baseURL string) *client.Client {
	return client.New(client.Options{BaseURL: baseURL, Timeout: 5 * time.Second, UserAgent: "bikeshare-app"})
}

func TestResolve_Found(t *testing.T) {
	var calls atomic.Int32
	srv := nominatim(t, map[string]string{
		"Union Square, New York": `[{"lat":"40.7359","lon":"-73.9911","display_name":"Union Square"}]`,
	}, &calls)
	defer srv.Close()

	r := NewResolver(newTestClient(srv.URL), nil)
	ctx := context.Background()

	first := r.Resolve(ctx, "Union Square, New York")
	require.True(t, first.Found())
	assert.Equal(t, models.GeocodeFound, first.Status)
	assert.InDelta(t, 40.7359, first.Point.Lat, 1e-9)
	assert.InDelta(t, -73.9911, first.Point.Lon, 1e-9)

	second := r.Resolve(ctx, "Union Square, New York")
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second lookup is served from memory")
}

func TestResolve_NotFoundIsCached(t *testing.T) {
	var calls atomic.Int32
	srv := nominatim(t, nil, &calls)
	defer srv.Close()

	r := NewResolver(newTestClient(srv.URL), nil)

	for i := 0; i < 3; i++ {
		result := r.Resolve(context.Background(), "nowhere in particular")
		assert.Equal(t, models.GeocodeNotFound, result.Status)
		assert.Nil(t, result.Point)
		assert.False(t, result.Found())
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolve_EmptyAddress(t *testing.T) {
	var calls atomic.Int32
	srv := nominatim(t, nil, &calls)
	defer srv.Close()

	r := NewResolver(newTestClient(srv.URL), nil)

	assert.Equal(t, models.GeocodeNotFound, r.Resolve(context.Background(), "   ").Status)
	assert.Equal(t, int32(0), calls.Load())
}

func TestResolve_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":"rate limited"}`))
			},
		},
		{
			name: "malformed coordinates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[{"lat":"north","lon":"-73.9"}]`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.handler(w, r)
			}))
			defer srv.Close()

			r := NewResolver(newTestClient(srv.URL), nil, WithTimeout(50*time.Millisecond))

			result := r.Resolve(context.Background(), "Union Square")
			assert.Equal(t, models.GeocodeUnavailable, result.Status)
			assert.Nil(t, result.Point)

			var unavailableErr *UnavailableError
			assert.True(t, errors.As(result.Err, &unavailableErr))

			again := r.Resolve(context.Background(), "Union Square")
			assert.Equal(t, models.GeocodeUnavailable, again.Status)
			assert.Equal(t, int32(1), calls.Load(), "unavailability is remembered, not retried")
		})
	}
}

func TestResolve_CanceledCallerIsNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := nominatim(t, map[string]string{"Union Square": `[{"lat":"40.7359","lon":"-73.9911"}]`}, &calls)
	defer srv.Close()

	r := NewResolver(newTestClient(srv.URL), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, models.GeocodeUnavailable, r.Resolve(ctx, "Union Square").Status)

	assert.True(t, r.Resolve(context.Background(), "Union Square").Found())
}

func TestResolve_CanceledCallerDoesNotFailOthers(t *testing.T) {
	var calls atomic.Int32
	received := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		close(received)
		<-release
		_, _ = w.Write([]byte(`[{"lat":"40.7359","lon":"-73.9911"}]`))
	}))
	defer srv.Close()

	r := NewResolver(newTestClient(srv.URL), nil)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan models.GeocodeResult, 1)
	go func() { first <- r.Resolve(ctx, "Union Square") }()
	<-received

	second := make(chan models.GeocodeResult, 1)
	go func() { second <- r.Resolve(context.Background(), "Union Square") }()

	cancel()
	select {
	case result := <-first:
		assert.Equal(t, models.GeocodeUnavailable, result.Status)
	case <-time.After(time.Second):
		t.Fatal("canceled caller did not return")
	}

	close(release)
	select {
	case result := <-second:
		assert.True(t, result.Found())
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolve_PersistentStore(t *testing.T) {
	t.Run("stored answer skips the geocoder", func(t *testing.T) {
		store := &mockGeocodeStore{
			getGeocodeFunc: func(ctx context.Context, address string) (*models.GeocodeRecord, error) {
				return &models.GeocodeRecord{Address: address, Found: true, Lat: 1.5, Lon: 2.5}, nil
			},
		}
		r := NewResolver(&client.Client{GetFunc: func(ctx context.Context, path string) (*client.Response, error) {
			t.Fatal("geocoder should not be called")
			return nil, nil
		}}, nil, WithStore(store))

		result := r.Resolve(context.Background(), "somewhere")
		require.True(t, result.Found())
		assert.Equal(t, models.Coordinate{Lat: 1.5, Lon: 2.5}, *result.Point)
	})

	t.Run("stored negative answer", func(t *testing.T) {
		store := &mockGeocodeStore{
			getGeocodeFunc: func(ctx context.Context, address string) (*models.GeocodeRecord, error) {
				return &models.GeocodeRecord{Address: address, Found: false}, nil
			},
		}
		r := NewResolver(&client.Client{GetFunc: func(ctx context.Context, path string) (*client.Response, error) {
			t.Fatal("geocoder should not be called")
			return nil, nil
		}}, nil, WithStore(store))

		assert.Equal(t, models.GeocodeNotFound, r.Resolve(context.Background(), "somewhere").Status)
	})

	t.Run("fresh answers are saved", func(t *testing.T) {
		var calls atomic.Int32
		srv := nominatim(t, map[string]string{"Union Square": `[{"lat":"40.7359","lon":"-73.9911"}]`}, &calls)
		defer srv.Close()

		saved := make(chan models.GeocodeRecord, 2)
		store := &mockGeocodeStore{
			getGeocodeFunc: func(ctx context.Context, address string) (*models.GeocodeRecord, error) {
				return nil, errors.New("table missing")
			},
			saveGeocodeFunc: func(ctx context.Context, record models.GeocodeRecord) error {
				saved <- record
				return nil
			},
		}
		r := NewResolver(newTestClient(srv.URL), nil, WithStore(store))

		require.True(t, r.Resolve(context.Background(), "Union Square").Found())
		select {
		case record := <-saved:
			assert.Equal(t, "Union Square", record.Address)
			assert.True(t, record.Found)
			assert.InDelta(t, 40.7359, record.Lat, 1e-9)
		case <-time.After(time.Second):
			t.Fatal("geocode was not saved")
		}
	})

	t.Run("unavailable answers are not saved", func(t *testing.T) {
		store := &mockGeocodeStore{
			saveGeocodeFunc: func(ctx context.Context, record models.GeocodeRecord) error {
				t.Error("unavailable result should not be persisted")
				return nil
			},
		}
		r := NewResolver(&client.Client{GetFunc: func(ctx context.Context, path string) (*client.Response, error) {
			return nil, errors.New("connection refused")
		}}, nil, WithStore(store))

		assert.Equal(t, models.GeocodeUnavailable, r.Resolve(context.Background(), "Union Square").Status)
		time.Sleep(20 * time.Millisecond)
	})
}

func TestResolve_SharedCache(t *testing.T) {
	addressCache := cache.NewAddressCache()
	addressCache.Put("Union Square", models.GeocodeResult{Status: models.GeocodeFound, Point: &models.Coordinate{Lat: 1, Lon: 2}})

	r := NewResolver(&client.Client{GetFunc: func(ctx context.Context, path string) (*client.Response, error) {
		t.Fatal("geocoder should not be called")
		return nil, nil
	}}, addressCache)

	result := r.Resolve(context.Background(), "  Union Square ")
	assert.True(t, result.Found())
}
