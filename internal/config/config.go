// Package config loads the board's settings from environment variables.
//
// Every field names its variable in an env tag (alternates after a comma),
// a default, and validate rules checked once at startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Feed     FeedConfig
	Catalog  CatalogConfig
	Board    BoardConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080" validate:"min=1,max=65535"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s" validate:"gte=0"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s" validate:"gte=0"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s" validate:"gt=0"`
}

// FeedConfig holds job feed settings.
type FeedConfig struct {
	// URL is the CSV feed address. Empty serves the bundled sample.
	// VITE_JOBS_CSV_URL is still read for older deployments.
	URL string `env:"JOBS_CSV_URL,VITE_JOBS_CSV_URL" validate:"omitempty,feedurl"`

	// FetchTimeout bounds a single feed download (default: 30s)
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" default:"30s" validate:"gt=0"`

	// MaxBytes is the largest feed accepted (default: 10MiB)
	MaxBytes int64 `env:"FETCH_MAX_BYTES" default:"10485760" validate:"gt=0"`
}

// CatalogConfig holds refresh settings for the in-memory job collection.
type CatalogConfig struct {
	// RefreshSchedule is a cron spec; "off" disables it (default: @every 30m)
	RefreshSchedule string `env:"CATALOG_REFRESH_SCHEDULE" default:"@every 30m" validate:"cronspec"`

	// ReloadDebounce is the quiet period before a requested reload runs (default: 2s)
	ReloadDebounce time.Duration `env:"CATALOG_RELOAD_DEBOUNCE" default:"2s" validate:"gte=0"`
}

// BoardConfig holds board presentation settings.
type BoardConfig struct {
	// PageSize is the number of jobs added per page (default: 12)
	PageSize int `env:"PAGE_SIZE" default:"12" validate:"min=1,max=100"`

	// ReloadRate is reload requests per minute per client (default: 10)
	ReloadRate int `env:"RELOAD_RATE_LIMIT" default:"10" validate:"min=1"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES" validate:"dive,cidr|ip"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
