package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// ServerConfig configures cmd/contrax-api.
type ServerConfig struct {
	Port           string
	StorageBackend string
	DatabaseURL    string

	// SeedFile is an optional YAML fixture loaded into the store at startup.
	SeedFile string

	ShutdownTimeout time.Duration
	CacheMaxAge     time.Duration

	// DBMaxConns bounds the postgres pool. Zero leaves the driver default.
	DBMaxConns int32
}

func LoadServerConfigFromEnv() (ServerConfig, error) {
	cfg := ServerConfig{
		Port:            getenv("PORT", "8080"),
		StorageBackend:  getenv("STORAGE_BACKEND", StorageMemory),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SeedFile:        os.Getenv("SEED_FILE"),
		ShutdownTimeout: 10 * time.Second,
		// Clients holding the current version tag may reuse a list this long.
		CacheMaxAge: time.Hour,
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return ServerConfig{}, fmt.Errorf("missing required env var DATABASE_URL for STORAGE_BACKEND=postgres")
		}
	default:
		return ServerConfig{}, fmt.Errorf("STORAGE_BACKEND must be memory or postgres (got %q)", cfg.StorageBackend)
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("SHUTDOWN_TIMEOUT must be a duration (e.g. 10s): %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v := os.Getenv("CACHE_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("CACHE_MAX_AGE must be a duration (e.g. 1h): %w", err)
		}
		if d < 0 {
			return ServerConfig{}, fmt.Errorf("CACHE_MAX_AGE must not be negative")
		}
		cfg.CacheMaxAge = d
	}
	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return ServerConfig{}, fmt.Errorf("DB_MAX_CONNS must be a non-negative integer (got %q)", v)
		}
		cfg.DBMaxConns = int32(n)
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
