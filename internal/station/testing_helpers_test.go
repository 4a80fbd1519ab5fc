package station

import "github.com/bbernstein/dockfinder/backend-go/internal/models"

func intPtr(i int) *int {
	return &i
}

// bikeRow builds a located row with the given per-type bike counts
func bikeRow(id string, lat, lon float64, types map[string]int) models.JoinedStation {
	total := 0
	for _, n := range types {
		total += n
	}
	return models.JoinedStation{
		StationStatus: models.StationStatus{
			StationID:         id,
			NumBikesAvailable: intPtr(total),
			BikeTypes:         types,
		},
		Location: &models.Coordinate{Lat: lat, Lon: lon},
	}
}

func dockRow(id string, lat, lon float64, docks int) models.JoinedStation {
	return models.JoinedStation{
		StationStatus: models.StationStatus{
			StationID:         id,
			NumDocksAvailable: intPtr(docks),
		},
		Location: &models.Coordinate{Lat: lat, Lon: lon},
	}
}

// stationsAB are the two reference stations: A holds only e-bikes, B only
// mechanical bikes, and the query point sits on A.
func stationsAB() []models.JoinedStation {
	return []models.JoinedStation{
		bikeRow("A", 40.0, -73.0, map[string]int{"ebike": 2, "mechanical": 0}),
		bikeRow("B", 40.01, -73.01, map[string]int{"ebike": 0, "mechanical": 5}),
	}
}
