package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bbernstein/dockfinder/backend-go/internal/app"
	"github.com/bbernstein/dockfinder/backend-go/internal/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type requestHandler interface {
	HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

var (
	lambdaStart = lambda.Start // Allow mocking of lambda.Start in tests
	handler     requestHandler
	setupOnce   sync.Once
	initHandler = defaultInitHandler
)

func defaultInitHandler(ctx context.Context) (requestHandler, error) {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	h, err := app.NewNearestHandler(ctx, cfg, config.GetCacheConfig())
	if err != nil {
		return nil, err
	}
	return h, nil
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if handler == nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"responseType":"error","error":"Handler not initialized"}`,
		}, nil
	}
	return handler.HandleRequest(ctx, request)
}

// InitializeService builds the handler once per container
func InitializeService() error {
	var initError error
	setupOnce.Do(func() {
		// Missing .env is normal outside local development
		_ = godotenv.Load()

		h, err := initHandler(context.Background())
		if err != nil {
			initError = fmt.Errorf("failed to initialize handler: %w", err)
			log.Error().Err(err).Msg("Failed to initialize handler")
			return
		}
		handler = h
		log.Debug().Msg("Nearest station service initialized")
	})
	return initError
}

func main() {
	if err := InitializeService(); err != nil {
		log.Error().Err(err).Msg("Starting without a handler")
	}
	lambdaStart(handleRequest)
}
