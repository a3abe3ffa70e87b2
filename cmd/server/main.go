package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/internal/config"
	"github.com/garyjia/tkdn-compliance/internal/container"
	httpapi "github.com/garyjia/tkdn-compliance/internal/interfaces/http"
	"github.com/garyjia/tkdn-compliance/pkg/utils"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "tkdn-compliance: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(cfg.ToLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting TKDN compliance service",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	containerCfg := cfg.ToContainerConfig()
	app, err := container.NewContainer(containerCfg, logger)
	if err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Container shutdown failed", zap.Error(err))
		}
	}()

	services := app.Services()
	server := httpapi.NewServer(
		httpapi.ServerConfig{
			Host:            containerCfg.Server.Host,
			Port:            containerCfg.Server.Port,
			ReadTimeout:     containerCfg.Server.ReadTimeout,
			WriteTimeout:    containerCfg.Server.WriteTimeout,
			ShutdownTimeout: containerCfg.Server.ShutdownTimeout,
			MaxFileSize:     containerCfg.Server.MaxFileSize,
			IdentitySecret:  containerCfg.Access.IdentitySecret,
		},
		httpapi.Services{
			Submissions:    services.Submission,
			Reviews:        services.Review,
			Justifications: services.Justification,
			Reports:        services.Report,
		},
		app,
		app.KeyValueLogger(),
	)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("TKDN compliance service stopped")
	return nil
}
