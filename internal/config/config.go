package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the process configuration, loaded once at startup
type Config struct {
	AppEnv   string   `env:"APP_ENV" envDefault:"production"`
	Server   Server   `envPrefix:"SERVER_"`
	Database Database `envPrefix:"DATABASE_"`
	DB       DBRetry  `envPrefix:"DB_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Log      Log      `envPrefix:"LOG_"`
}

// Server contains HTTP server parameters.
type Server struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Database contains connection strings. LocalURL replaces URL in development when set.
type Database struct {
	URL      string `env:"URL,required,notEmpty"`
	LocalURL string `env:"LOCAL_URL"`
}

// DBRetry controls the startup connection loop.
type DBRetry struct {
	ConnectRetries       int           `env:"CONNECT_RETRIES" envDefault:"5"`
	ConnectRetryInterval time.Duration `env:"CONNECT_RETRY_INTERVAL" envDefault:"5s"`
}

type JWT struct {
	SecretKey       string `env:"SECRET_KEY,required,notEmpty"`
	ExpirationHours int64  `env:"EXPIRATION_HOURS" envDefault:"24"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Pretty bool   `env:"PRETTY" envDefault:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.AppEnv != EnvDevelopment && cfg.AppEnv != EnvProduction {
		return nil, fmt.Errorf("invalid APP_ENV %q: must be %s or %s", cfg.AppEnv, EnvDevelopment, EnvProduction)
	}
	if cfg.DB.ConnectRetries < 1 {
		cfg.DB.ConnectRetries = 1
	}
	return &cfg, nil
}

// IsDevelopment reports whether the process runs against the local database
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// DSN returns the connection string for the current environment
func (c *Config) DSN() string {
	if c.IsDevelopment() && c.Database.LocalURL != "" {
		return c.Database.LocalURL
	}
	return c.Database.URL
}
