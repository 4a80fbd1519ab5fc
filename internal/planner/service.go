package planner

import (
	"context"
	"fmt"

	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Kind string

const (
	KindBike Kind = "bike"
	KindDock Kind = "dock"
)

// Query describes one lookup. Exactly one of Point and Address locates the user.
type Query struct {
	SystemID  string
	Point     *models.Coordinate
	Address   string
	Kind      Kind
	Modes     []string
	WithRoute bool
	// Refresh discards cached feeds of the system before looking up the station
	Refresh bool
}

func (q Query) validate() error {
	if q.Point == nil && q.Address == "" {
		return NewInvalidQueryError("either coordinates or an address is required")
	}
	if q.Point != nil && q.Address != "" {
		return NewInvalidQueryError("coordinates and address are mutually exclusive")
	}
	if q.Kind != KindBike && q.Kind != KindDock {
		return NewInvalidQueryError(fmt.Sprintf("unknown station type %q", q.Kind))
	}
	return nil
}

// Service runs a query as one sequential chain: locate the user, pick the station,
// then optionally route to it.
type Service struct {
	finder    models.StationFinder
	addresses AddressResolver
	routes    RouteResolver
}

var _ PlannerService = (*Service)(nil)

func NewService(finder models.StationFinder, addresses AddressResolver, routes RouteResolver) *Service {
	return &Service{
		finder:    finder,
		addresses: addresses,
		routes:    routes,
	}
}

func (s *Service) Nearest(ctx context.Context, query Query) (*models.NearestResult, error) {
	if err := query.validate(); err != nil {
		return nil, err
	}

	result := &models.NearestResult{
		QueryID: uuid.NewString(),
		Kind:    string(query.Kind),
		Address: query.Address,
	}
	logger := log.With().Str("query_id", result.QueryID).Logger()

	origin, err := s.locate(ctx, logger, query, result)
	if err != nil {
		return nil, err
	}
	result.Origin = origin

	if query.Refresh {
		if err := s.finder.Invalidate(query.SystemID); err != nil {
			return nil, err
		}
	}

	var ref *models.StationRef
	switch query.Kind {
	case KindBike:
		result.Modes = query.Modes
		ref, err = s.finder.FindNearestBike(ctx, query.SystemID, origin, query.Modes)
	case KindDock:
		ref, err = s.finder.FindNearestDock(ctx, query.SystemID, origin)
	}
	if err != nil {
		logger.Info().Err(err).Str("kind", string(query.Kind)).Msg("No station for query")
		return nil, err
	}
	result.Station = *ref

	logger.Info().
		Str("station_id", ref.StationID).
		Float64("distance_km", ref.DistanceKm).
		Msg("Nearest station resolved")

	if query.WithRoute && s.routes != nil {
		route, err := s.routes.Route(ctx, origin, ref.Coordinate())
		if err != nil {
			logger.Warn().Err(err).Str("station_id", ref.StationID).Msg("Routing failed, returning station without route")
			result.RouteError = err.Error()
		} else {
			result.Route = route
		}
	}

	return result, nil
}

func (s *Service) locate(ctx context.Context, logger zerolog.Logger, query Query, result *models.NearestResult) (models.Coordinate, error) {
	if query.Point != nil {
		return *query.Point, nil
	}
	if s.addresses == nil {
		return models.Coordinate{}, NewInvalidQueryError("address lookup is not configured")
	}

	geocoded := s.addresses.Resolve(ctx, query.Address)
	result.Geocode = geocoded.Status

	switch geocoded.Status {
	case models.GeocodeFound:
		if geocoded.Point != nil {
			return *geocoded.Point, nil
		}
	case models.GeocodeUnavailable:
		logger.Warn().Err(geocoded.Err).Str("address", query.Address).Msg("Geocoder unavailable")
		return models.Coordinate{}, &AddressNotFoundError{Address: query.Address, Err: geocoded.Err}
	}

	logger.Info().Str("address", query.Address).Msg("Address not found")
	return models.Coordinate{}, &AddressNotFoundError{Address: query.Address}
}
