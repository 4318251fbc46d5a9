package db

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrPoolExhausted is returned when every connection stays checked out for the whole acquire timeout
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrCounterMissing is returned when the seed row with id 1 does not exist
	ErrCounterMissing = errors.New("counter row missing")

	// ErrStoreClosed is returned after Close
	ErrStoreClosed = errors.New("store closed")
)

// CounterStore is the interface for the hit counter
// Both PostgresCounter and MemoryCounter implement this interface
type CounterStore interface {
	// InitSchema creates the counter table and seed row if absent
	InitSchema(ctx context.Context) error

	// IncrementAndGetHits atomically adds one hit and returns the new value
	IncrementAndGetHits(ctx context.Context) (int64, error)

	// Stats returns a snapshot of the connection pool
	Stats() PoolStats

	// Close releases every pooled connection
	Close()
}

// PoolStats describes checked-out and idle connections
type PoolStats struct {
	Acquired int32
	Idle     int32
	Total    int32
	Max      int32
}

// Ensure both PostgresCounter and MemoryCounter implement CounterStore
var _ CounterStore = (*PostgresCounter)(nil)
var _ CounterStore = (*MemoryCounter)(nil)

// acquireError classifies a failed checkout. A timeout while every
// connection is checked out is pool exhaustion; anything else is a
// connection failure.
func acquireError(parent context.Context, err error, stats PoolStats) error {
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) && stats.Acquired >= stats.Max {
		return ErrPoolExhausted
	}
	return fmt.Errorf("failed to acquire connection: %w", err)
}
