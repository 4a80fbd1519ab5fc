package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	defaultOSRMBaseURL      = "http://router.project-osrm.org"
	defaultOSRMProfile      = "driving"
	defaultUserAgent        = "bikeshare-app"
)

type Config struct {
	Environment    string        `validate:"required"`
	LogLevel       zerolog.Level
	HTTPTimeout    time.Duration `validate:"gt=0"`
	GeocodeTimeout time.Duration `validate:"gt=0"`
	RouteTimeout   time.Duration `validate:"gt=0"`
	MaxRetries     int           `validate:"gte=0"`
	UserAgent      string        `validate:"required"`

	NominatimBaseURL string `validate:"required,url"`
	OSRMBaseURL      string `validate:"required,url"`
	OSRMProfile      string `validate:"required,oneof=driving walking cycling"`

	// Default system, used when a request names no provider
	StatusFeedURL      string `validate:"omitempty,url"`
	InformationFeedURL string `validate:"omitempty,url"`
	ProvidersFile      string

	LocationBucket string
	GeocodeTable   string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout sets the timeout used for feed requests
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithGeocodeTimeout bounds every call to the geocoding provider
func WithGeocodeTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.GeocodeTimeout = timeout
	}
}

func WithRouteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.RouteTimeout = timeout
	}
}

func WithFeeds(statusURL, informationURL string) Option {
	return func(c *Config) {
		c.StatusFeedURL = statusURL
		c.InformationFeedURL = informationURL
	}
}

func WithProvidersFile(path string) Option {
	return func(c *Config) {
		c.ProvidersFile = path
	}
}

func WithNominatimBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.NominatimBaseURL = baseURL
	}
}

func WithOSRM(baseURL, profile string) Option {
	return func(c *Config) {
		c.OSRMBaseURL = baseURL
		if profile != "" {
			c.OSRMProfile = profile
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithLocationBucket enables the S3 snapshot tier for station information
func WithLocationBucket(bucket string) Option {
	return func(c *Config) {
		c.LocationBucket = bucket
	}
}

// WithGeocodeTable enables the DynamoDB tier for geocoding results
func WithGeocodeTable(table string) Option {
	return func(c *Config) {
		c.GeocodeTable = table
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:      "production",
		LogLevel:         zerolog.InfoLevel,
		HTTPTimeout:      10 * time.Second,
		GeocodeTimeout:   10 * time.Second,
		RouteTimeout:     10 * time.Second,
		MaxRetries:       3,
		UserAgent:        defaultUserAgent,
		NominatimBaseURL: defaultNominatimBaseURL,
		OSRMBaseURL:      defaultOSRMBaseURL,
		OSRMProfile:      defaultOSRMProfile,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Validate checks the configuration for missing or malformed values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if (c.StatusFeedURL == "") != (c.InformationFeedURL == "") {
		return fmt.Errorf("invalid configuration: status and information feed URLs must be set together")
	}
	return nil
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log.Logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithGeocodeTimeout(getDurationEnvOrDefault("GEOCODE_TIMEOUT", 10*time.Second)),
		WithRouteTimeout(getDurationEnvOrDefault("ROUTE_TIMEOUT", 10*time.Second)),
		WithFeeds(os.Getenv("STATUS_FEED_URL"), os.Getenv("INFORMATION_FEED_URL")),
		WithProvidersFile(os.Getenv("PROVIDERS_FILE")),
		WithNominatimBaseURL(getEnvOrDefault("NOMINATIM_BASE_URL", defaultNominatimBaseURL)),
		WithOSRM(getEnvOrDefault("OSRM_BASE_URL", defaultOSRMBaseURL), os.Getenv("OSRM_PROFILE")),
		WithUserAgent(getEnvOrDefault("USER_AGENT", defaultUserAgent)),
		WithLocationBucket(os.Getenv("LOCATION_CACHE_BUCKET")),
		WithGeocodeTable(os.Getenv("GEOCODE_CACHE_TABLE")),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
