package models

import (
	"fmt"
	"strings"
)

// GeocodeRecord is a persisted geocoding answer, positive or negative
type GeocodeRecord struct {
	Address     string  `dynamodbav:"address"`
	Found       bool    `dynamodbav:"found"`
	Lat         float64 `dynamodbav:"lat"`
	Lon         float64 `dynamodbav:"lon"`
	LastUpdated int64   `dynamodbav:"lastUpdated"`
	TTL         int64   `dynamodbav:"ttl"`
}

// Validate checks if a GeocodeRecord's fields are valid
func (r *GeocodeRecord) Validate() error {
	if strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if !r.Found {
		return nil
	}
	if r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("invalid latitude: %f", r.Lat)
	}
	if r.Lon < -180 || r.Lon > 180 {
		return fmt.Errorf("invalid longitude: %f", r.Lon)
	}
	return nil
}

type GeocodeStatus string

const (
	GeocodeFound       GeocodeStatus = "FOUND"
	GeocodeNotFound    GeocodeStatus = "NOT_FOUND"
	GeocodeUnavailable GeocodeStatus = "UNAVAILABLE"
)

// GeocodeResult is the outcome of resolving an address. Point is set only when
// Status is GeocodeFound; Err carries the provider failure for GeocodeUnavailable.
type GeocodeResult struct {
	Status GeocodeStatus `json:"status"`
	Point  *Coordinate   `json:"point,omitempty"`
	Err    error         `json:"-"`
}

func (r GeocodeResult) Found() bool {
	return r.Status == GeocodeFound && r.Point != nil
}
