package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"forecast-viewer/app"
)

func main() {
	// Parse command line arguments
	port := flag.Int("port", 8080, "Port to run the server on")
	configFile := flag.String("config", "config.json", "Path to configuration file")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := app.NewLogger(os.Stderr, "json", *logLevel)

	config, err := app.LoadConfig(*configFile)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	application, err := app.New(config, logger)
	if err != nil {
		logger.Error("failed to initialise", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Serve(ctx, *port, logger); err != nil {
		logger.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
