package planner

import (
	"context"

	"github.com/bbernstein/dockfinder/backend-go/internal/models"
)

type PlannerService interface {
	Nearest(ctx context.Context, query Query) (*models.NearestResult, error)
}

type AddressResolver interface {
	Resolve(ctx context.Context, address string) models.GeocodeResult
}

type RouteResolver interface {
	Route(ctx context.Context, origin, destination models.Coordinate) (*models.Route, error)
}
