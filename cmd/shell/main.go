package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiplabel-dev/shiplabel/internal/app"
	"github.com/shiplabel-dev/shiplabel/internal/config"
	"github.com/shiplabel-dev/shiplabel/internal/logger"
	"github.com/shiplabel-dev/shiplabel/internal/notify"
	"github.com/shiplabel-dev/shiplabel/internal/shell"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	logger.Init(level, cfg.Logging.Format)
	log := logger.GetLogger()

	a, err := app.New(app.Options{
		Config:   cfg,
		Logger:   log,
		Notifier: notify.NewLog(log),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close session storage")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", version).Str("api_url", cfg.APIURL).Msg("Starting Shiplabel shell...")

	if err := shell.New(a, log, version).Run(ctx); err != nil {
		log.Error().Err(err).Msg("Shell stopped with error")
		stop()
		os.Exit(1)
	}
}
