// Package db provides the hit counter storage and its bounded connection pool.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig sizes the connection pool
type PoolConfig struct {
	ConnString     string
	MinConns       int32
	MaxConns       int32
	AcquireTimeout time.Duration
}

// DB wraps the database connection pool
type DB struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
	closeOnce      sync.Once
}

// New creates the connection pool. Connections are opened lazily, so an
// unreachable database is reported by Ping and by queries, not here.
func New(ctx context.Context, cfg PoolConfig) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	timeout := cfg.AcquireTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DB{pool: pool, acquireTimeout: timeout}, nil
}

// Ping checks that a connection can be established
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Acquire checks out a connection, waiting at most the acquire timeout.
// The caller must Release it on every path.
func (d *DB) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	actx, cancel := context.WithTimeout(ctx, d.acquireTimeout)
	defer cancel()

	conn, err := d.pool.Acquire(actx)
	if err != nil {
		return nil, acquireError(ctx, err, d.Stats())
	}
	return conn, nil
}

// Stats returns a snapshot of the pool
func (d *DB) Stats() PoolStats {
	s := d.pool.Stat()
	return PoolStats{
		Acquired: s.AcquiredConns(),
		Idle:     s.IdleConns(),
		Total:    s.TotalConns(),
		Max:      s.MaxConns(),
	}
}

// Close closes the database connection pool. Later calls do nothing.
func (d *DB) Close() {
	d.closeOnce.Do(d.pool.Close)
}

// Pool returns the underlying connection pool
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
