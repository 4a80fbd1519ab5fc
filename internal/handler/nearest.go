package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/dockfinder/backend-go/internal/api"
	"github.com/bbernstein/dockfinder/backend-go/internal/feed"
	"github.com/bbernstein/dockfinder/backend-go/internal/geo"
	"github.com/bbernstein/dockfinder/backend-go/internal/geocode"
	"github.com/bbernstein/dockfinder/backend-go/internal/planner"
	"github.com/bbernstein/dockfinder/backend-go/internal/station"
	"github.com/rs/zerolog/log"
)

type NearestHandler struct {
	planner planner.PlannerService
}

func NewNearestHandler(service planner.PlannerService) *NearestHandler {
	return &NearestHandler{
		planner: service,
	}
}

func (h *NearestHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	query, err := api.ParseQuery(request.QueryStringParameters)
	if err != nil {
		return api.Error(err.Error(), http.StatusBadRequest)
	}

	result, err := h.planner.Nearest(ctx, query)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Int("status", status).Msg("Nearest station query failed")
		}
		return api.Error(err.Error(), status)
	}

	return api.Success(api.NewNearestResponse(result))
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var (
		invalidCoord   *geo.InvalidCoordinateError
		invalidQuery   *planner.InvalidQueryError
		invalidModes   *station.InvalidModesError
		unknownSystem  *station.UnknownSystemError
		unavailable    *geocode.UnavailableError
		addressMissing *planner.AddressNotFoundError
		noStation      *station.NoEligibleStationError
		schemaErr      *feed.SchemaError
		feedStatus     *feed.HTTPStatusError
	)

	switch {
	case errors.As(err, &invalidCoord), errors.As(err, &invalidQuery),
		errors.As(err, &invalidModes), errors.As(err, &unknownSystem):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &addressMissing), errors.As(err, &noStation):
		return http.StatusNotFound
	case errors.As(err, &schemaErr), errors.As(err, &feedStatus):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
