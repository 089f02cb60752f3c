package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moviebooking/docs-gateway/config"
	"github.com/moviebooking/docs-gateway/internal/httpserver"
	"github.com/moviebooking/docs-gateway/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "docsgateway",
		Short:        "API documentation gateway for the movie booking services",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yaml (default: ./config/config.yaml or ./config.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve Swagger UI, swagger-config and the service documents",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), configFile)
			},
		},
		newResolveCmd(),
	)

	return root
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.Logging.File == "" {
		return logger.New(cfg.Logging.Level, true, cfg.Server.Environment)
	}

	return logger.NewWithFile(cfg.Logging.Level, true, cfg.Server.Environment, logger.FileOptions{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
}

func runServe(parent context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("err", err))
		return err
	}

	log := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize gateway", slog.Any("err", err))
		return err
	}
	defer app.Close()

	srv, err := httpserver.New(cfg.Server.Address, app.router)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		return err
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Docs gateway listening",
		slog.String("addr", cfg.Server.Address),
		slog.String("ui", cfg.Docs.UIPath),
		slog.String("resolve", cfg.Docs.Resolve),
		slog.Int("services", len(cfg.Services)))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
			return err
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting docs gateway", slog.Any("err", err))
			return fmt.Errorf("start server: %w", err)
		}
	}

	return nil
}
