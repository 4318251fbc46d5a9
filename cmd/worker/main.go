// Package main runs the traffic generators without the HTTP API or a database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsjohal14/hitlog/internal/libs/config"
	"github.com/dsjohal14/hitlog/internal/libs/jobs"
	"github.com/dsjohal14/hitlog/internal/libs/obs"
	"github.com/dsjohal14/hitlog/internal/traffic"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := jobs.NewSupervisor(ctx, logger)
	if traffic.Start(sup, cfg, nil, logger) == 0 {
		logger.Warn().Msg("no traffic generator enabled, set PERIODIC_LOGGING or PERIODIC_BIG_LOGGING")
	}

	logger.Info().Msg("worker started")
	sup.Wait()
	logger.Info().Msg("worker stopped")
}
