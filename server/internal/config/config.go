package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the knowledge-rag demo backend.
// Environment variables are parsed from the KRAG_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage Configuration
	SQLitePath string `envconfig:"SQLITE_PATH" default:"knowledge-rag.db"`

	// Real-time channel
	WriteTimeout   time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
	ClientSendBuf  int           `envconfig:"WS_SEND_BUFFER" default:"64"`
	AllowAnyOrigin bool          `envconfig:"WS_ALLOW_ANY_ORIGIN" default:"true"`

	// Shutdown
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// New loads configuration from the environment.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("KRAG", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid http port %d", cfg.HTTPPort)
	}
	return &cfg, nil
}
