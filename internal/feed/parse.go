package feed

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

type envelope struct {
	LastUpdated *flexTime `json:"last_updated"`
	Data        *struct {
		Stations []json.RawMessage `json:"stations"`
	} `json:"data"`
}

// statusRow keeps every field but the id raw: a value that cannot be decoded is
// treated as absent instead of costing the whole row.
type statusRow struct {
	StationID              flexString      `json:"station_id"`
	IsRenting              json.RawMessage `json:"is_renting"`
	IsReturning            json.RawMessage `json:"is_returning"`
	LastReported           json.RawMessage `json:"last_reported"`
	NumBikesAvailable      json.RawMessage `json:"num_bikes_available"`
	NumDocksAvailable      json.RawMessage `json:"num_docks_available"`
	NumBikesAvailableTypes json.RawMessage `json:"num_bikes_available_types"`
}

// optional decodes raw into a T, returning nil when the field is absent, null or
// unreadable. Unreadable values are counted in *invalid.
func optional[T any](raw json.RawMessage, invalid *int) *T {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		*invalid++
		log.Trace().Err(err).RawJSON("value", raw).Msg("Ignoring unreadable status field")
		return nil
	}
	return &v
}

type informationRow struct {
	StationID flexString     `json:"station_id"`
	Name      localizedName  `json:"name"`
	Lat       *flexFloat     `json:"lat"`
	Lon       *flexFloat     `json:"lon"`
	Capacity  *flexInt       `json:"capacity"`
	Address   *localizedName `json:"address"`
}

type dedupKey struct {
	stationID    string
	lastReported int64
}

func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, NewSchemaError("document is not a JSON object", err)
	}
	if env.Data == nil || env.Data.Stations == nil {
		return nil, NewSchemaError("document has no data.stations list", nil)
	}
	return &env, nil
}

// ParseStatus turns a station_status document into a snapshot. Rows are kept only
// when is_renting and is_returning are true, each checked only when present, and
// rows sharing (station_id, last_reported) collapse to the first occurrence.
// fetchedAt is used as the snapshot time when the document has no last_updated.
func ParseStatus(body []byte, fetchedAt time.Time) (*models.StatusSnapshot, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	snapshot := &models.StatusSnapshot{
		FetchedAt:   fetchedAt.UTC(),
		LastUpdated: env.LastUpdated.timePtr(),
		Stations:    make([]models.StationStatus, 0, len(env.Data.Stations)),
	}
	if snapshot.LastUpdated != nil {
		snapshot.FetchedAt = *snapshot.LastUpdated
	}

	seen := make(map[dedupKey]struct{})
	var malformed, invalidFields, inactive, duplicates int

	for _, raw := range env.Data.Stations {
		var row statusRow
		if err := json.Unmarshal(raw, &row); err != nil || row.StationID == "" {
			malformed++
			log.Trace().Err(err).RawJSON("row", raw).Msg("Skipping malformed status row")
			continue
		}

		isRenting := optional[flexBool](row.IsRenting, &invalidFields)
		isReturning := optional[flexBool](row.IsReturning, &invalidFields)
		if (isRenting != nil && !bool(*isRenting)) ||
			(isReturning != nil && !bool(*isReturning)) {
			inactive++
			continue
		}

		status := models.StationStatus{
			StationID:         string(row.StationID),
			LastReported:      optional[flexTime](row.LastReported, &invalidFields).timePtr(),
			NumBikesAvailable: intPtr(optional[flexInt](row.NumBikesAvailable, &invalidFields)),
			NumDocksAvailable: intPtr(optional[flexInt](row.NumDocksAvailable, &invalidFields)),
			BikeTypes:         expandBikeTypes(optional[map[string]json.RawMessage](row.NumBikesAvailableTypes, &invalidFields), &invalidFields),
			FetchedAt:         snapshot.FetchedAt,
		}
		if isRenting != nil {
			v := bool(*isRenting)
			status.IsRenting = &v
		}
		if isReturning != nil {
			v := bool(*isReturning)
			status.IsReturning = &v
		}

		if status.LastReported != nil {
			key := dedupKey{stationID: status.StationID, lastReported: status.LastReported.Unix()}
			if _, dup := seen[key]; dup {
				duplicates++
				continue
			}
			seen[key] = struct{}{}
		}

		snapshot.Stations = append(snapshot.Stations, status)
	}

	if malformed > 0 {
		log.Warn().Int("malformed_rows", malformed).Msg("Status feed contained malformed rows")
	}
	if invalidFields > 0 {
		log.Warn().Int("invalid_fields", invalidFields).Msg("Status feed contained unreadable fields, treated as absent")
	}
	log.Debug().
		Int("stations", len(snapshot.Stations)).
		Int("inactive", inactive).
		Int("duplicates", duplicates).
		Msg("Parsed station status")

	return snapshot, nil
}

// ParseInformation turns a station_information document into locations. Rows
// without a station id or a coordinate cannot be joined and are dropped.
func ParseInformation(body []byte) ([]models.StationLocation, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	locations := make([]models.StationLocation, 0, len(env.Data.Stations))
	dropped := 0

	for _, raw := range env.Data.Stations {
		var row informationRow
		if err := json.Unmarshal(raw, &row); err != nil || row.StationID == "" || row.Lat == nil || row.Lon == nil {
			dropped++
			log.Trace().Err(err).RawJSON("row", raw).Msg("Skipping station information row")
			continue
		}

		location := models.StationLocation{
			StationID: string(row.StationID),
			Name:      string(row.Name),
			Lat:       float64(*row.Lat),
			Lon:       float64(*row.Lon),
			Capacity:  intPtr(row.Capacity),
		}
		if row.Address != nil && *row.Address != "" {
			address := string(*row.Address)
			location.Address = &address
		}
		locations = append(locations, location)
	}

	if dropped > 0 {
		log.Warn().Int("dropped_rows", dropped).Msg("Station information rows without id or coordinates")
	}

	return locations, nil
}

// expandBikeTypes flattens num_bikes_available_types into named per-type counts.
// Names are lowercased to match requested modes; unreadable counts are skipped.
func expandBikeTypes(types *map[string]json.RawMessage, invalid *int) map[string]int {
	if types == nil {
		return nil
	}
	counts := make(map[string]int, len(*types))
	for name, raw := range *types {
		count := optional[flexInt](raw, invalid)
		if count == nil {
			continue
		}
		counts[strings.ToLower(strings.TrimSpace(name))] += int(*count)
	}
	return counts
}

func intPtr(n *flexInt) *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}
