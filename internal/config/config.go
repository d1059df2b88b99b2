package config

import (
	"errors"
	"os"
	"strings"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")

// Config holds server configuration.
type Config struct {
	// Port the HTTP surface listens on.
	Port string

	// DatabaseURL is the postgres DSN, shared by gorm and the feed listener.
	DatabaseURL string

	// BoundaryPath points at the electorate boundary GeoJSON.
	BoundaryPath string

	// LayersPath optionally points at a YAML layer-display config; empty
	// means built-in defaults.
	LayersPath string

	// StaticMapsKey is the Google Static Maps API key used on route
	// sheets. Optional; sheets omit the map URL without it.
	StaticMapsKey string
}

// LoadFromEnv loads server configuration from environment variables.
//
// Environment variables:
//   - PORT: HTTP listen port (default: 5050)
//   - DATABASE_URL: postgres DSN (required)
//   - BOUNDARY_GEOJSON: path to the electorate boundary (default: data/oatley.geojson)
//   - LAYER_CONFIG: path to a YAML layer-display config (optional)
//   - STATIC_MAPS_KEY: Google Static Maps API key (optional)
func LoadFromEnv() Config {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5050"
	}

	boundaryPath := strings.TrimSpace(os.Getenv("BOUNDARY_GEOJSON"))
	if boundaryPath == "" {
		boundaryPath = "data/oatley.geojson"
	}

	return Config{
		Port:          port,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		BoundaryPath:  boundaryPath,
		LayersPath:    strings.TrimSpace(os.Getenv("LAYER_CONFIG")),
		StaticMapsKey: os.Getenv("STATIC_MAPS_KEY"),
	}
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}
