package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/bbernstein/dockfinder/backend-go/internal/planner"
)

// DefaultModes is used when a bike query names no modes
var DefaultModes = []string{"ebike", "mechanical"}

type InvalidCoordinatesError struct{}

func (e InvalidCoordinatesError) Error() string {
	return "Invalid coordinates"
}

type InvalidParameterError struct {
	Name string
}

func (e InvalidParameterError) Error() string {
	return fmt.Sprintf("Invalid parameter: %s", e.Name)
}

// ParseCoordinates returns nil when neither lat nor lon is given
func ParseCoordinates(params map[string]string) (*models.Coordinate, error) {
	latStr, hasLat := params["lat"]
	lonStr, hasLon := params["lon"]

	if !hasLat && !hasLon {
		return nil, nil
	}
	if !hasLat {
		return nil, InvalidParameterError{Name: "lat"}
	}
	if !hasLon {
		return nil, InvalidParameterError{Name: "lon"}
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, InvalidParameterError{Name: "lat"}
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, InvalidParameterError{Name: "lon"}
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, InvalidCoordinatesError{}
	}

	return &models.Coordinate{Lat: lat, Lon: lon}, nil
}

// ParseModes splits a comma separated list, dropping blanks and repeats
func ParseModes(raw string) []string {
	var modes []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		mode := strings.ToLower(strings.TrimSpace(part))
		if mode == "" || seen[mode] {
			continue
		}
		seen[mode] = true
		modes = append(modes, mode)
	}
	if len(modes) == 0 {
		return append([]string(nil), DefaultModes...)
	}
	return modes
}

// ParseQuery builds a planner query from GET /nearest parameters
func ParseQuery(params map[string]string) (planner.Query, error) {
	point, err := ParseCoordinates(params)
	if err != nil {
		return planner.Query{}, err
	}

	query := planner.Query{
		SystemID: strings.TrimSpace(params["system"]),
		Point:    point,
		Address:  strings.TrimSpace(params["address"]),
		Kind:     planner.KindBike,
	}

	if kind, ok := params["type"]; ok {
		switch planner.Kind(strings.ToLower(kind)) {
		case planner.KindBike:
		case planner.KindDock:
			query.Kind = planner.KindDock
		default:
			return planner.Query{}, InvalidParameterError{Name: "type"}
		}
	}

	if query.Kind == planner.KindBike {
		query.Modes = ParseModes(params["modes"])
	}

	if raw, ok := params["route"]; ok {
		withRoute, err := strconv.ParseBool(raw)
		if err != nil {
			return planner.Query{}, InvalidParameterError{Name: "route"}
		}
		query.WithRoute = withRoute
	}

	if raw, ok := params["refresh"]; ok {
		refresh, err := strconv.ParseBool(raw)
		if err != nil {
			return planner.Query{}, InvalidParameterError{Name: "refresh"}
		}
		query.Refresh = refresh
	}

	return query, nil
}
