// Package container wires the compliance service together and owns its lifecycle.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Server   ServerConfig
	Cache    CacheConfig
	Access   AccessConfig
	Events   EventsConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// MigrationsDir replaces the embedded migrations when non-empty
	MigrationsDir string
}

// StorageConfig holds file storage settings.
type StorageConfig struct {
	// ReportDir is the base directory for exported reports
	ReportDir string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// MaxFileSize is the per-file upload limit in bytes
	MaxFileSize int64
}

// CacheConfig holds listing projection settings.
type CacheConfig struct {
	ListingTTL time.Duration
}

// AccessConfig holds access policy settings.
type AccessConfig struct {
	// PolicyFile is a casbin policy CSV; empty uses the built-in policy
	PolicyFile string

	// IdentitySecret is the HMAC key shared with the gateway; empty trusts the headers as sent
	IdentitySecret string
}

// EventsConfig holds domain event delivery settings.
type EventsConfig struct {
	// Synchronous runs subscribers before the command returns instead of in the background
	Synchronous bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/tkdn.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Storage: StorageConfig{
			ReportDir: "data/generated",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxFileSize:     5 << 20,
		},
		Cache: CacheConfig{
			ListingTTL: 30 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.ReportDir == "" {
		return fmt.Errorf("storage.report_dir is required")
	}
	if c.Server.MaxFileSize <= 0 {
		return fmt.Errorf("server.max_file_size must be positive")
	}
	return nil
}
