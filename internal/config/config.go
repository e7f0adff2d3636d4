// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for saved templates.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Template store: "postgres" or "mongo"
	StoreBackend string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// MongoDB connection, used when StoreBackend is "mongo"
	MongoURL string
	MongoDB  string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage for uploaded images
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Editor behaviour
	RenderStrict       bool          // escape text and drop unsafe style values
	SnapshotTTL        time.Duration // lifetime of mirrored canvas snapshots
	SessionIdleTimeout time.Duration // evict editing sessions idle this long
	CORSOrigins        []string
	UploadRatePerMin   int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is read first; variables already set in the environment win. Returns an
// error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StoreBackend: envOrDefault("STORE_BACKEND", BackendPostgres),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "mailcanvas"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "mailcanvas"),

		MongoURL: envOrDefault("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDB:  envOrDefault("MONGODB_DB", "mailcanvas"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "mailcanvas-uploads"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.RenderStrict, err = strconv.ParseBool(envOrDefault("RENDER_STRICT", "true")); err != nil {
		return nil, fmt.Errorf("RENDER_STRICT: %w", err)
	}
	if cfg.SnapshotTTL, err = time.ParseDuration(envOrDefault("SNAPSHOT_TTL", "168h")); err != nil {
		return nil, fmt.Errorf("SNAPSHOT_TTL: %w", err)
	}
	if cfg.SessionIdleTimeout, err = time.ParseDuration(envOrDefault("SESSION_IDLE_TIMEOUT", "2h")); err != nil {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT: %w", err)
	}
	if cfg.UploadRatePerMin, err = strconv.Atoi(envOrDefault("UPLOAD_RATE_PER_MIN", "30")); err != nil {
		return nil, fmt.Errorf("UPLOAD_RATE_PER_MIN: %w", err)
	}

	switch cfg.StoreBackend {
	case BackendPostgres, BackendMongo:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMongo, cfg.StoreBackend)
	}

	if cfg.Env == "production" {
		if cfg.StoreBackend == BackendPostgres && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// S3Configured reports whether enough S3 settings are present to enable
// image hosting.
func (c *Config) S3Configured() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
