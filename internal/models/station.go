package models

import "time"

// Coordinate is a WGS-84 position in decimal degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StationStatus is one normalized row of a station status feed. Pointer fields are
// nil when the provider omitted them.
type StationStatus struct {
	StationID         string     `json:"stationId"`
	IsRenting         *bool      `json:"isRenting,omitempty"`
	IsReturning       *bool      `json:"isReturning,omitempty"`
	LastReported      *time.Time `json:"lastReported,omitempty"`
	NumBikesAvailable *int       `json:"numBikesAvailable,omitempty"`
	NumDocksAvailable *int       `json:"numDocksAvailable,omitempty"`
	// BikeTypes holds the expanded num_bikes_available_types record, one entry per
	// bike type observed. Nil when the feed carries no bike type breakdown.
	BikeTypes map[string]int `json:"bikeTypes,omitempty"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// BikeTypeCount returns the count for a bike type; absent types count as zero
func (s StationStatus) BikeTypeCount(bikeType string) int {
	return s.BikeTypes[bikeType]
}

// DocksAvailable returns the dock count, zero when the feed omitted it
func (s StationStatus) DocksAvailable() int {
	if s.NumDocksAvailable == nil {
		return 0
	}
	return *s.NumDocksAvailable
}

// BikesAvailable returns the bike count. Without num_bikes_available it falls back
// to the sum of the per-type counts.
func (s StationStatus) BikesAvailable() int {
	if s.NumBikesAvailable != nil {
		return *s.NumBikesAvailable
	}
	total := 0
	for _, n := range s.BikeTypes {
		total += n
	}
	return total
}

// StatusSnapshot is the result of one status feed pull
type StatusSnapshot struct {
	FetchedAt   time.Time       `json:"fetchedAt"`
	LastUpdated *time.Time      `json:"lastUpdated,omitempty"`
	Stations    []StationStatus `json:"stations"`
}

// StationLocation is static station geography from an information feed
type StationLocation struct {
	StationID string  `json:"stationId"`
	Name      string  `json:"name,omitempty"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Capacity  *int    `json:"capacity,omitempty"`
	Address   *string `json:"address,omitempty"`
}

// JoinedStation is a status row with its location, if one was found
type JoinedStation struct {
	StationStatus
	Name     string      `json:"name,omitempty"`
	Location *Coordinate `json:"location,omitempty"`
}

// AvailabilityLevel buckets a bike count the way station markers are colored
type AvailabilityLevel string

const (
	AvailabilityMany AvailabilityLevel = "many"
	AvailabilityFew  AvailabilityLevel = "few"
	AvailabilityNone AvailabilityLevel = "none"
)

// StationRef identifies the station chosen for a query
type StationRef struct {
	StationID      string            `json:"stationId"`
	Name           string            `json:"name,omitempty"`
	Lat            float64           `json:"lat"`
	Lon            float64           `json:"lon"`
	DistanceKm     float64           `json:"distanceKm"`
	BikesAvailable int               `json:"bikesAvailable"`
	DocksAvailable int               `json:"docksAvailable"`
	Availability   AvailabilityLevel `json:"availability"`
}

func (r StationRef) Coordinate() Coordinate {
	return Coordinate{Lat: r.Lat, Lon: r.Lon}
}
