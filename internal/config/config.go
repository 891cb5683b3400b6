// Package config provides process configuration for gdpdash.
// It loads settings from environment variables with defaults and validates
// them on startup so misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all process configuration.
type Config struct {
	Data     DataConfig
	Server   ServerConfig
	Export   ExportConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// DataConfig says what to load when no source is given on the command line.
type DataConfig struct {
	// PipelineFile is a YAML pipeline file. When set it takes precedence
	// over Source and Format.
	PipelineFile string `env:"GDP_CONFIG_FILE"`

	// Source is the dataset path used with the built-in GDP contract.
	Source string `env:"GDP_DATA_SOURCE"`

	// Format is a loader format or "auto" (default: auto)
	Format string `env:"GDP_DATA_FORMAT" default:"auto"`

	// ReloadInterval re-runs the configured source while serving.
	// Zero disables reloading (default: 0)
	ReloadInterval time.Duration `env:"GDP_RELOAD_INTERVAL" default:"0s"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxUploadSize caps POST /api/run bodies in bytes (default: 50MB)
	MaxUploadSize int64 `env:"SERVER_MAX_UPLOAD_SIZE" default:"52428800"`

	// MaxConcurrentRuns caps simultaneous POST /api/run requests (default: 2)
	MaxConcurrentRuns int `env:"SERVER_MAX_CONCURRENT_RUNS" default:"2"`

	// RunWait is how long a run waits for a free slot before 429 (default: 30s)
	RunWait time.Duration `env:"SERVER_RUN_WAIT" default:"30s"`
}

// ExportConfig holds the PostgreSQL export target.
type ExportConfig struct {
	// DatabaseURL is the PostgreSQL connection string. Empty disables
	// database export. DATABASE_URL is accepted for compatibility.
	DatabaseURL string `env:"EXPORT_DATABASE_URL" envAlt:"DATABASE_URL"`

	// Table is the target table, optionally schema-qualified (default: gdp)
	Table string `env:"EXPORT_TABLE" default:"gdp"`

	// Mode is append or replace (default: append)
	Mode string `env:"EXPORT_MODE" default:"append"`

	// MaxConns is the pool size used for export (default: 4)
	MaxConns int `env:"EXPORT_DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections kept open (default: 0)
	MinConns int `env:"EXPORT_DB_MIN_CONNS" default:"0"`
}

// SecurityConfig holds settings for the HTTP API.
type SecurityConfig struct {
	// AllowedOrigins is a comma-separated CORS origin list (default: *)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"*"`

	// DataRoot restricts server-side source paths to this directory.
	// Empty disallows server-side paths; only uploads are accepted.
	DataRoot string `env:"GDP_DATA_ROOT"`

	// APIKeys is a comma-separated list of keys accepted on POST /api/run.
	// Empty leaves the endpoint open.
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies lists CIDRs or addresses whose X-Real-IP and
	// X-Forwarded-For headers are believed. Empty ignores those headers.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Enabled reports whether a database export target is configured.
func (c *ExportConfig) Enabled() bool {
	return c.DatabaseURL != ""
}
