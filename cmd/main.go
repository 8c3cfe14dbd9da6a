package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AlexOwl/jtechdigital-ha/internal/api"
	"github.com/AlexOwl/jtechdigital-ha/internal/clock"
	"github.com/AlexOwl/jtechdigital-ha/internal/config"
	"github.com/AlexOwl/jtechdigital-ha/internal/entity"
	"github.com/AlexOwl/jtechdigital-ha/internal/jtech"
	"github.com/AlexOwl/jtechdigital-ha/internal/matrix"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("JTECH_CONFIG"), logger)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Starting HDMI Matrix Bridge",
		zap.String("host", cfg.Host),
		zap.String("api", cfg.APIListen))

	clk := clock.NewReal()
	client := jtech.NewHTTPClient(cfg.Host, logger.Named("jtech"))

	coordinator := matrix.New(client, matrix.Config{
		Username:        cfg.Username,
		Password:        cfg.Password,
		ScanInterval:    cfg.ScanInterval.Std(),
		RefreshDebounce: cfg.RefreshDebounce.Std(),
	}, logger.Named("matrix"), clk)

	opts := entity.Options{
		HDMIStreamToggle: cfg.Options.HDMIStreamToggle,
		CATStreamToggle:  cfg.Options.CATStreamToggle,
		CECSourceToggle:  cfg.Options.CECSourceToggle,
		CECOutputToggle:  cfg.Options.CECOutputToggle,
		CECDelayPower:    cfg.Options.CECDelayPower.Std(),
		CECDelaySource:   cfg.Options.CECDelaySource.Std(),
		CECVolumeControl: cfg.Options.CECVolumeControl,
	}

	server := api.NewServer(coordinator, opts, clk, logger.Named("api"), cfg.APIListen)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start API server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go coordinator.Run(ctx)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Bridge running. Press Ctrl+C to exit.")
	<-sigChan

	logger.Info("Shutting down gracefully...")
	cancel()
	if err := server.Stop(); err != nil {
		logger.Error("API server shutdown failed", zap.Error(err))
	}
	client.Disconnect()
}
