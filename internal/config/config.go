// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Metrics backends selectable with METRICS_BACKEND.
const (
	MetricsMemory     = "memory"
	MetricsPrometheus = "prometheus"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL), the origin store.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Redis is optional; empty disables the invalidation bus and rate limiting.
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Cache
	EventsTTL        time.Duration `env:"CACHE_EVENTS_TTL" envDefault:"5m"`
	FilterOptionsTTL time.Duration `env:"CACHE_FILTER_OPTIONS_TTL" envDefault:"30m"`

	// Timezone deciding which calendar day is "today" for time frames.
	CatalogTimezone string `env:"CATALOG_TIMEZONE" envDefault:"UTC"`

	InvalidationChannel string `env:"INVALIDATION_CHANNEL" envDefault:"catalog:invalidate"`

	// Rate limiting (per client IP, requires Redis)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"100"`

	MetricsBackend string `env:"METRICS_BACKEND" envDefault:"memory"`

	// Comma-separated list of allowed origins (e.g., "https://app.example.com,*.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// RedisEnabled reports whether a Redis URL was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// Location resolves CatalogTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.CatalogTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_TIMEZONE %q: %w", c.CatalogTimezone, err)
	}
	return loc, nil
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	if c.EventsTTL <= 0 || c.FilterOptionsTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	switch c.MetricsBackend {
	case MetricsMemory, MetricsPrometheus:
	default:
		return fmt.Errorf("unknown METRICS_BACKEND %q", c.MetricsBackend)
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
