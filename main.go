package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/praaatap/monitoring-prometheus-grafana/config"
	"github.com/praaatap/monitoring-prometheus-grafana/logging"
	"github.com/praaatap/monitoring-prometheus-grafana/metrics"
	"github.com/praaatap/monitoring-prometheus-grafana/server"
	"github.com/praaatap/monitoring-prometheus-grafana/sysstats"
)

const statsSampleInterval = 5 * time.Second

func main() {
	// Read the env variables, .env is optional
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogLevel)

	registry, err := metrics.NewRegistry()
	if err != nil {
		logging.Error("Failed to create metrics registry", "error", err)
		os.Exit(1)
	}

	stats := sysstats.NewContainer()
	sampler := sysstats.NewSampler(stats, statsSampleInterval)
	if err := sampler.Start(); err != nil {
		logging.Error("Failed to start stats sampler", "error", err)
		os.Exit(1)
	}
	defer sampler.Stop()

	srv := server.New(cfg, registry, stats)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown error", "error", err)
		os.Exit(1)
	}
}
