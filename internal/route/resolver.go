package route

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/bbernstein/dockfinder/backend-go/internal/geo"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/bbernstein/dockfinder/backend-go/pkg/http/client"
	"github.com/rs/zerolog/log"
)

const (
	DefaultProfile = "driving"
	defaultTimeout = 10 * time.Second
)

// Resolver asks an OSRM server for a route. There is no retry and no fallback.
type Resolver struct {
	httpClient client.Interface
	profile    string
	timeout    time.Duration
}

func NewResolver(httpClient client.Interface, profile string, timeout time.Duration) *Resolver {
	if profile == "" {
		profile = DefaultProfile
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Resolver{
		httpClient: httpClient,
		profile:    profile,
		timeout:    timeout,
	}
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route returns the path from origin to destination in lat,lon order with the
// duration in minutes rounded to one decimal.
func (r *Resolver) Route(ctx context.Context, origin, destination models.Coordinate) (*models.Route, error) {
	if err := geo.Validate(origin); err != nil {
		return nil, err
	}
	if err := geo.Validate(destination); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	path := fmt.Sprintf("/route/v1/%s/%s;%s?geometries=geojson", r.profile, lonLat(origin), lonLat(destination))
	resp, err := r.httpClient.Get(ctx, path)
	if err != nil {
		return nil, NewRoutingError("request failed", err)
	}
	if resp == nil {
		return nil, NewRoutingError("no response from router", nil)
	}

	var body osrmResponse
	decodeErr := json.Unmarshal(resp.Body, &body)

	if !resp.OK() {
		if decodeErr == nil && body.Code != "" {
			return nil, NewRoutingError(fmt.Sprintf("status %d: %s: %s", resp.StatusCode, body.Code, body.Message), nil)
		}
		return nil, NewRoutingError(fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	if decodeErr != nil {
		return nil, NewRoutingError("decoding response", decodeErr)
	}
	if body.Code != "Ok" {
		return nil, NewRoutingError(fmt.Sprintf("%s: %s", body.Code, body.Message), nil)
	}
	if len(body.Routes) == 0 {
		return nil, NewRoutingError("no route found", nil)
	}

	best := body.Routes[0]
	if len(best.Geometry.Coordinates) == 0 {
		return nil, NewRoutingError("route has no geometry", nil)
	}

	points := make([]models.Coordinate, len(best.Geometry.Coordinates))
	for i, c := range best.Geometry.Coordinates {
		if len(c) < 2 {
			return nil, NewRoutingError(fmt.Sprintf("malformed coordinate at index %d", i), nil)
		}
		points[i] = models.Coordinate{Lat: c[1], Lon: c[0]}
	}

	route := &models.Route{
		Path:            points,
		DurationMinutes: math.Round(best.Duration/60*10) / 10,
		DistanceKm:      best.Distance / 1000,
	}

	log.Debug().
		Int("points", len(points)).
		Float64("duration_minutes", route.DurationMinutes).
		Float64("distance_km", route.DistanceKm).
		Msg("Route resolved")

	return route, nil
}

func lonLat(p models.Coordinate) string {
	return strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}
