package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	tests := []struct {
		name     string
		response interface{ GetResponseType() string }
		want     int
	}{
		{
			name: "nearest response",
			response: NewNearestResponse(&models.NearestResult{
				QueryID: "q-1",
				Kind:    "dock",
				Station: models.StationRef{StationID: "A", Lat: 40, Lon: -73},
			}),
			want: http.StatusOK,
		},
		{
			name:     "error body with success status",
			response: NewErrorResponse("test error"),
			want:     http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Success(tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StatusCode)

			// Verify response body can be unmarshaled back to the correct type
			var resp APIResponse
			err = json.Unmarshal([]byte(got.Body), &resp)
			require.NoError(t, err)
			assert.Equal(t, tt.response.GetResponseType(), resp.ResponseType)

			assert.Equal(t, "application/json", got.Headers["Content-Type"])
			assert.Equal(t, "*", got.Headers["Access-Control-Allow-Origin"])
		})
	}
}

func TestSuccess_NearestBodyIsFlat(t *testing.T) {
	got, err := Success(NewNearestResponse(&models.NearestResult{
		QueryID: "q-1",
		Kind:    "bike",
		Station: models.StationRef{StationID: "A", Availability: models.AvailabilityFew},
		Route:   &models.Route{DurationMinutes: 2.1},
	}))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(got.Body), &body))
	assert.Equal(t, "nearest", body["responseType"])
	assert.Equal(t, "q-1", body["queryId"])

	station, ok := body["station"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "A", station["stationId"])
	assert.Equal(t, "few", station["availability"])
	assert.NotContains(t, body, "routeError")
}

func TestSuccess_UnmarshalableBody(t *testing.T) {
	got, err := Success(map[string]interface{}{"bad": make(chan int)})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		statusCode int
	}{
		{name: "basic error", message: "test error", statusCode: http.StatusBadRequest},
		{name: "server error", message: "internal server error", statusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Error(tt.message, tt.statusCode)
			require.NoError(t, err)
			assert.Equal(t, tt.statusCode, got.StatusCode)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(got.Body), &resp))
			assert.Equal(t, "error", resp.ResponseType)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}
