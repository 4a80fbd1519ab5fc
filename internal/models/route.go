package models

// Route is a path from an origin to a station, in lat,lon order
type Route struct {
	Path            []Coordinate `json:"path"`
	DurationMinutes float64      `json:"durationMinutes"`
	DistanceKm      float64      `json:"distanceKm"`
}
