package models

// NearestResult answers one nearest-station query. Route is nil when no route was
// requested or the router failed, in which case RouteError says why.
type NearestResult struct {
	QueryID    string        `json:"queryId"`
	Kind       string        `json:"kind"`
	Modes      []string      `json:"modes,omitempty"`
	Origin     Coordinate    `json:"origin"`
	Address    string        `json:"address,omitempty"`
	Station    StationRef    `json:"station"`
	Route      *Route        `json:"route,omitempty"`
	RouteError string        `json:"routeError,omitempty"`
	Geocode    GeocodeStatus `json:"geocode,omitempty"`
}
