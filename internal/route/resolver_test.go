package route

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bbernstein/dockfinder/backend-go/internal/geo"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/bbernstein/dockfinder/backend-go/pkg/http/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	origin      = models.Coordinate{Lat: 40.7359, Lon: -73.9911}
	destination = models.Coordinate{Lat: 40.7411, Lon: -73.9897}
)

func TestRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route/v1/driving/-73.9911,40.7359;-73.9897,40.7411", r.URL.Path)
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"duration": 125.0,
				"distance": 812.4,
				"geometry": {"type": "LineString", "coordinates": [[-73.9911, 40.7359], [-73.9903, 40.7385], [-73.9897, 40.7411]]}
			}]
		}`))
	}))
	defer srv.Close()

	r := NewResolver(client.New(client.Options{BaseURL: srv.URL, Timeout: time.Second}), "", 0)

	route, err := r.Route(context.Background(), origin, destination)
	require.NoError(t, err)

	assert.Equal(t, []models.Coordinate{
		{Lat: 40.7359, Lon: -73.9911},
		{Lat: 40.7385, Lon: -73.9903},
		{Lat: 40.7411, Lon: -73.9897},
	}, route.Path)
	assert.Equal(t, 2.1, route.DurationMinutes)
	assert.InDelta(t, 0.8124, route.DistanceKm, 1e-9)
}

func TestRoute_DurationRounding(t *testing.T) {
	tests := []struct {
		seconds float64
		want    float64
	}{
		{seconds: 0, want: 0},
		{seconds: 60, want: 1},
		{seconds: 93, want: 1.6},
		{seconds: 1234.5, want: 20.6},
	}

	for _, tt := range tests {
		r := NewResolver(&client.Client{GetFunc: func(ctx context.Context, path string) (*client.Response, error) {
			body := `{"code":"Ok","routes":[{"duration":` + strconv.FormatFloat(tt.seconds, 'f', -1, 64) + `,"geometry":{"coordinates":[[0,0],[1,1]]}}]}`
			return &client.Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil
		}}, "cycling", time.Second)

		route, err := r.Route(context.Background(), origin, destination)
		require.NoError(t, err)
		assert.Equal(t, tt.want, route.DurationMinutes, "seconds=%v", tt.seconds)
	}
}

func TestRoute_Profile(t *testing.T) {
	var path string
	r := NewResolver(&client.Client{GetFunc: func(ctx context.Context, p string) (*client.Response, error) {
		path = p
		return &client.Response{StatusCode: http.StatusOK, Body: []byte(`{"code":"Ok","routes":[{"duration":60,"geometry":{"coordinates":[[0,0]]}}]}`)}, nil
	}}, "cycling", time.Second)

	_, err := r.Route(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Equal(t, "/route/v1/cycling/-73.9911,40.7359;-73.9897,40.7411?geometries=geojson", path)
}

func TestRoute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		response *client.Response
		err      error
		contains string
	}{
		{name: "network failure", err: errors.New("connection refused"), contains: "connection refused"},
		{name: "http error with OSRM body", response: &client.Response{StatusCode: http.StatusBadRequest, Body: []byte(`{"code":"InvalidQuery","message":"Query string malformed"}`)}, contains: "InvalidQuery"},
		{name: "http error", response: &client.Response{StatusCode: http.StatusBadGateway, Body: []byte(`<html/>`)}, contains: "502"},
		{name: "malformed json", response: &client.Response{StatusCode: http.StatusOK, Body: []byte(`{"code":`)}, contains: "decoding"},
		{name: "no route code", response: &client.Response{StatusCode: http.StatusOK, Body: []byte(`{"code":"NoRoute","message":"Impossible route","routes":[]}`)}, contains: "NoRoute"},
		{name: "empty routes", response: &client.Response{StatusCode: http.StatusOK, Body: []byte(`{"code":"Ok","routes":[]}`)}, contains: "no route"},
		{name: "missing geometry", response: &client.Response{StatusCode: http.StatusOK, Body: []byte(`{"code":"Ok","routes":[{"duration":10}]}`)}, contains: "geometry"},
		{name: "short coordinate", response: &client.Response{StatusCode: http.StatusOK, Body: []byte(`{"code":"Ok","routes":[{"duration":10,"geometry":{"coordinates":[[1,2],[3]]}}]}`)}, contains: "index 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			r := NewResolver(&client.Client{GetFunc: func(ctx context.Context, path string) (*client.Response, error) {
				calls.Add(1)
				return tt.response, tt.err
			}}, "", time.Second)

			route, err := r.Route(context.Background(), origin, destination)
			assert.Nil(t, route)

			var routingErr *RoutingError
			require.True(t, errors.As(err, &routingErr), "got %v", err)
			assert.ErrorContains(t, err, tt.contains)
			assert.Equal(t, int32(1), calls.Load(), "no retry")
		})
	}
}

func TestRoute_InvalidCoordinates(t *testing.T) {
	r := NewResolver(&client.Client{GetFunc: func(ctx context.Context, path string) (*client.Response, error) {
		t.Fatal("router should not be called")
		return nil, nil
	}}, "", time.Second)

	_, err := r.Route(context.Background(), models.Coordinate{Lat: 100, Lon: 0}, destination)
	var coordErr *geo.InvalidCoordinateError
	assert.True(t, errors.As(err, &coordErr))
}

func TestRoute_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	r := NewResolver(client.New(client.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}), "", 50*time.Millisecond)

	_, err := r.Route(context.Background(), origin, destination)
	var routingErr *RoutingError
	require.True(t, errors.As(err, &routingErr))
	assert.ErrorContains(t, err, "request failed")
}
