package station

import "github.com/bbernstein/dockfinder/backend-go/internal/models"

// Join attaches a location to every status row by station id. Every status row
// appears exactly once and in input order; rows with no matching location keep a
// nil Location. When the location list repeats an id, the last entry wins.
func Join(statuses []models.StationStatus, locations []models.StationLocation) []models.JoinedStation {
	byID := make(map[string]models.StationLocation, len(locations))
	for _, loc := range locations {
		byID[loc.StationID] = loc
	}

	joined := make([]models.JoinedStation, len(statuses))
	for i, status := range statuses {
		joined[i] = models.JoinedStation{StationStatus: status}
		if loc, ok := byID[status.StationID]; ok {
			joined[i].Name = loc.Name
			joined[i].Location = &models.Coordinate{Lat: loc.Lat, Lon: loc.Lon}
		}
	}
	return joined
}
