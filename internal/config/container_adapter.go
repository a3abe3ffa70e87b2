package config

import (
	"github.com/garyjia/tkdn-compliance/internal/container"
	"github.com/garyjia/tkdn-compliance/pkg/utils"
)

// ToContainerConfig converts the application Config to a container.Config
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Storage: container.StorageConfig{
			ReportDir: c.Storage.ReportDir,
		},
		Server: container.ServerConfig{
			Host:            c.Server.Host,
			Port:            c.Server.Port,
			ReadTimeout:     c.Server.ReadTimeout,
			WriteTimeout:    c.Server.WriteTimeout,
			ShutdownTimeout: c.Server.ShutdownTimeout,
			MaxFileSize:     c.Upload.MaxFileSize,
		},
		Cache: container.CacheConfig{
			ListingTTL: c.Cache.ListingTTL,
		},
		Access: container.AccessConfig{
			PolicyFile:     c.Access.PolicyFile,
			IdentitySecret: c.Access.IdentitySecret,
		},
		Events: container.EventsConfig{
			Synchronous: c.Events.Synchronous,
		},
	}
}

// ToLoggerConfig converts the logger section for utils.NewLogger
func (c *Config) ToLoggerConfig() utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
		MaxSizeMB:  c.Logger.MaxSizeMB,
		MaxBackups: c.Logger.MaxBackups,
		MaxAgeDays: c.Logger.MaxAgeDays,
		Compress:   c.Logger.Compress,
	}
}
