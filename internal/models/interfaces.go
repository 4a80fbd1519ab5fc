package models

import "context"

type StationFinder interface {
	FindNearestBike(ctx context.Context, systemID string, point Coordinate, modes []string) (*StationRef, error)
	FindNearestDock(ctx context.Context, systemID string, point Coordinate) (*StationRef, error)
	Invalidate(systemID string) error
}
