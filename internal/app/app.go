// Package app wires configuration, storage, HTTP routing and background generators.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	apihttp "github.com/dsjohal14/hitlog/internal/http"
	"github.com/dsjohal14/hitlog/internal/libs/config"
	"github.com/dsjohal14/hitlog/internal/libs/jobs"
	"github.com/dsjohal14/hitlog/internal/scope/db"
	"github.com/dsjohal14/hitlog/internal/traffic"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// App holds everything a running service needs. It replaces process-wide
// singletons: handlers and generators receive what they use from here.
type App struct {
	Cfg        *config.Config
	Logger     zerolog.Logger
	Store      db.CounterStore
	Handler    *apihttp.Handler
	Router     *chi.Mux
	Supervisor *jobs.Supervisor

	closeOnce sync.Once
}

// New builds a fully-wired application instance and initializes the schema.
// A failed schema initialization is logged and the service starts degraded.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	InitSchema(ctx, store, logger)

	handler := apihttp.NewHandler(store, logger, apihttp.HealthOptions{
		BurstProbability: cfg.HealthBurstProbability,
		BurstBytes:       cfg.HealthBurstBytes,
	})

	return &App{
		Cfg:        cfg,
		Logger:     logger,
		Store:      store,
		Handler:    handler,
		Router:     apihttp.NewRouter(handler),
		Supervisor: jobs.NewSupervisor(ctx, logger),
	}, nil
}

// OpenStore creates the counter store for the configured backend
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (db.CounterStore, error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Info().
			Int32("min_conns", cfg.PoolMinConns).
			Int32("max_conns", cfg.PoolMaxConns).
			Msg("using in-memory counter store")
		store, err := db.NewMemoryCounter(ctx, cfg.PoolMinConns, cfg.PoolMaxConns, cfg.AcquireTimeout)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	database, err := db.New(ctx, db.PoolConfig{
		ConnString:     cfg.DatabaseURL,
		MinConns:       cfg.PoolMinConns,
		MaxConns:       cfg.PoolMaxConns,
		AcquireTimeout: cfg.AcquireTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := database.Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("database unreachable at startup, continuing")
	}

	logger.Info().
		Int32("min_conns", cfg.PoolMinConns).
		Int32("max_conns", cfg.PoolMaxConns).
		Msg("using Postgres counter store")
	return db.NewPostgresCounter(database), nil
}

// InitSchema runs the schema initializer and reports whether it succeeded
func InitSchema(ctx context.Context, store db.CounterStore, logger zerolog.Logger) bool {
	if err := store.InitSchema(ctx); err != nil {
		logger.Error().Err(err).Msg("Error initializing database")
		return false
	}
	logger.Info().Msg("Database initialized successfully")
	return true
}

// StartGenerators starts every traffic generator enabled in the config
func (a *App) StartGenerators() int {
	return traffic.Start(a.Supervisor, a.Cfg, a.Close, a.Logger)
}

// Run serves HTTP until ctx ends or the server fails, then shuts down
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Cfg.Addr(),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", srv.Addr).Msg("starting API server")
		serveErr <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		a.Logger.Info().Msg("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}

	a.Supervisor.Stop()
	a.Supervisor.Wait()
	a.Close()
	return err
}

// Close releases the connection pool. Later calls do nothing.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		stats := a.Store.Stats()
		a.Logger.Info().
			Int32("acquired", stats.Acquired).
			Int32("idle", stats.Idle).
			Msg("closing connection pool")
		a.Store.Close()
	})
}
