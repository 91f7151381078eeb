// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMinio    = "minio"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Merge    MergeConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Minio    MinioConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 3000)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"3000"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// SourceConfig describes the spreadsheet read by the configured import.
type SourceConfig struct {
	// Path is the file imported by POST /api/import-excel
	Path string `env:"SOURCE_PATH" default:"data/import.xlsx"`

	// Sheet selects the workbook sheet; empty means the first one
	Sheet string `env:"SOURCE_SHEET"`

	// MaxFileSize is the largest accepted source file in bytes (default: 50MB)
	MaxFileSize int64 `env:"SOURCE_MAX_FILE_SIZE" default:"52428800"`
}

// MergeConfig holds merge settings.
type MergeConfig struct {
	// PreferredKey is the column used as record identity when a batch has it
	PreferredKey string `env:"MERGE_PREFERRED_KEY" default:"id"`
}

// StorageConfig selects where the merged set is persisted.
type StorageConfig struct {
	// Backend is one of file, postgres, minio (default: file)
	Backend string `env:"STORAGE_BACKEND" default:"file"`

	// File is the JSON file used by the file backend
	File string `env:"STORAGE_FILE" default:"storage/data.json"`
}

// DatabaseConfig holds database connection settings for the postgres backend.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Table holds the persisted set (default: merged_records)
	Table string `env:"DB_TABLE" default:"merged_records"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// MinioConfig holds object store settings for the minio backend.
type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" default:"sheetmerge"`
	Object    string `env:"MINIO_OBJECT" default:"data.json"`
	UseSSL    bool   `env:"MINIO_USE_SSL" default:"false"`
	Region    string `env:"MINIO_REGION"`
}

// ImportConfig holds import processing settings.
type ImportConfig struct {
	// MaxWaitTime is how long an import waits for the running one to finish (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single import from read to save (default: 60s)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"60s"`

	// HistorySize is how many import results are kept in memory (default: 50)
	HistorySize int `env:"IMPORT_HISTORY_SIZE" default:"50"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is requests per minute for import endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey protects mutating routes with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// CORSAllowedOrigins is a comma-separated origin list (default: *)
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// SeqURL enables shipping logs to a Seq server when set
	SeqURL string `env:"LOG_SEQ_URL"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
