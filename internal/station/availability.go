package station

import "github.com/bbernstein/dockfinder/backend-go/internal/models"

// Availability buckets a bike count: more than three is many, any is few
func Availability(bikes int) models.AvailabilityLevel {
	switch {
	case bikes > 3:
		return models.AvailabilityMany
	case bikes > 0:
		return models.AvailabilityFew
	default:
		return models.AvailabilityNone
	}
}
