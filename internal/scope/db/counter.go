package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const createCounterTable = `
	CREATE TABLE IF NOT EXISTS status_hits (
		id SERIAL PRIMARY KEY,
		hits INTEGER NOT NULL
	)
`

// The seed row names id 1 explicitly so the primary key rejects a second
// seed from a concurrent initializer instead of adding another row.
const insertSeedRow = `
	INSERT INTO status_hits (id, hits)
	SELECT 1, 0
	WHERE NOT EXISTS (SELECT 1 FROM status_hits WHERE id = 1)
`

const incrementHits = `
	UPDATE status_hits SET hits = hits + 1 WHERE id = 1 RETURNING hits
`

// PostgresCounter implements CounterStore using PostgreSQL
type PostgresCounter struct {
	db *DB
}

// NewPostgresCounter creates a new PostgreSQL-backed counter
func NewPostgresCounter(db *DB) *PostgresCounter {
	return &PostgresCounter{db: db}
}

// InitSchema creates the status_hits table and its seed row
func (c *PostgresCounter) InitSchema(ctx context.Context) error {
	return c.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createCounterTable); err != nil {
			return fmt.Errorf("failed to create status_hits: %w", err)
		}
		if _, err := tx.Exec(ctx, insertSeedRow); err != nil {
			return fmt.Errorf("failed to insert seed row: %w", err)
		}
		return nil
	})
}

// IncrementAndGetHits adds one hit in a single statement and returns the new count
func (c *PostgresCounter) IncrementAndGetHits(ctx context.Context) (int64, error) {
	var hits int64
	err := c.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, incrementHits).Scan(&hits)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCounterMissing
		}
		if err != nil {
			return fmt.Errorf("failed to increment hits: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return hits, nil
}

// inTx runs fn on one pooled connection inside a transaction.
// Any error rolls the transaction back; the connection is always released.
func (c *PostgresCounter) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	conn, err := c.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("failed to roll back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the connection pool
func (c *PostgresCounter) Stats() PoolStats {
	return c.db.Stats()
}

// Close closes the connection pool
func (c *PostgresCounter) Close() {
	c.db.Close()
}
