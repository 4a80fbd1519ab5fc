package station

import (
	"github.com/bbernstein/dockfinder/backend-go/internal/geo"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

// Exclusions counts eligible rows that could not be ranked
type Exclusions struct {
	MissingLocation int
	InvalidLocation int
}

func (e Exclusions) Total() int {
	return e.MissingLocation + e.InvalidLocation
}

type eligibility func(models.JoinedStation) bool

// FindNearestBike returns the closest station that has a bike of any of the
// requested modes. Modes are bike type names from num_bikes_available_types.
func FindNearestBike(query models.Coordinate, rows []models.JoinedStation, modes []string) (*models.StationRef, error) {
	ref, _, err := nearestBike(query, rows, modes)
	return ref, err
}

// FindNearestDock returns the closest station with at least one free dock
func FindNearestDock(query models.Coordinate, rows []models.JoinedStation) (*models.StationRef, error) {
	ref, _, err := nearestDock(query, rows)
	return ref, err
}

func nearestBike(query models.Coordinate, rows []models.JoinedStation, modes []string) (*models.StationRef, Exclusions, error) {
	if len(modes) == 0 {
		return nil, Exclusions{}, &InvalidModesError{Message: "at least one bike mode is required"}
	}

	hasBike := func(row models.JoinedStation) bool {
		for _, mode := range modes {
			if row.BikeTypeCount(mode) > 0 {
				return true
			}
		}
		return false
	}

	ref, excluded, err := nearest(query, rows, hasBike)
	if err != nil {
		return nil, excluded, err
	}
	if ref == nil {
		return nil, excluded, NewNoEligibleStationError("no station has an available bike", modes)
	}
	return ref, excluded, nil
}

func nearestDock(query models.Coordinate, rows []models.JoinedStation) (*models.StationRef, Exclusions, error) {
	hasDock := func(row models.JoinedStation) bool {
		return row.DocksAvailable() > 0
	}

	ref, excluded, err := nearest(query, rows, hasDock)
	if err != nil {
		return nil, excluded, err
	}
	if ref == nil {
		return nil, excluded, NewNoEligibleStationError("no station has a free dock", nil)
	}
	return ref, excluded, nil
}

// nearest scans rows in order and keeps the first row at the smallest distance.
// It returns a nil ref when nothing is eligible.
func nearest(query models.Coordinate, rows []models.JoinedStation, eligible eligibility) (*models.StationRef, Exclusions, error) {
	var excluded Exclusions
	if err := geo.Validate(query); err != nil {
		return nil, excluded, err
	}

	var best *models.JoinedStation
	bestDistance := 0.0

	for i := range rows {
		row := &rows[i]
		if !eligible(*row) {
			continue
		}
		if row.Location == nil {
			excluded.MissingLocation++
			log.Trace().Str("station_id", row.StationID).Msg("Eligible station has no location")
			continue
		}

		distance, err := geo.DistanceKm(query, *row.Location)
		if err != nil {
			excluded.InvalidLocation++
			log.Trace().Err(err).Str("station_id", row.StationID).Msg("Eligible station has an invalid location")
			continue
		}

		if best == nil || distance < bestDistance {
			best = row
			bestDistance = distance
		}
	}

	if excluded.Total() > 0 {
		log.Warn().
			Int("missing_location", excluded.MissingLocation).
			Int("invalid_location", excluded.InvalidLocation).
			Msg("Eligible stations excluded from search")
	}

	if best == nil {
		return nil, excluded, nil
	}

	return &models.StationRef{
		StationID:      best.StationID,
		Name:           best.Name,
		Lat:            best.Location.Lat,
		Lon:            best.Location.Lon,
		DistanceKm:     bestDistance,
		BikesAvailable: best.BikesAvailable(),
		DocksAvailable: best.DocksAvailable(),
		Availability:   Availability(best.BikesAvailable()),
	}, excluded, nil
}
