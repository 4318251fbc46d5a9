// Package main implements the HTTP API server for hitlog.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsjohal14/hitlog/internal/app"
	"github.com/dsjohal14/hitlog/internal/libs/config"
	"github.com/dsjohal14/hitlog/internal/libs/obs"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}

	a.StartGenerators()

	if err := a.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
