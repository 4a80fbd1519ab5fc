package geo

import "fmt"

// InvalidCoordinateError is returned for a latitude or longitude outside the WGS-84 range
type InvalidCoordinateError struct {
	Message string
	Lat     float64
	Lon     float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate (%f, %f): %s", e.Lat, e.Lon, e.Message)
}

// NewInvalidCoordinateError creates a new invalid coordinate error
func NewInvalidCoordinateError(message string, lat, lon float64) *InvalidCoordinateError {
	return &InvalidCoordinateError{
		Message: message,
		Lat:     lat,
		Lon:     lon,
	}
}
