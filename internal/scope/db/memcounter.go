package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/puddle/v2"
)

// session stands in for a database connection
type session struct {
	id int64
}

// MemoryCounter implements CounterStore in memory behind a bounded
// session pool with the same checkout policy as the PostgreSQL backend.
// Failures can be injected to simulate an unreachable database.
type MemoryCounter struct {
	sessions       *puddle.Pool[*session]
	acquireTimeout time.Duration
	nextID         atomic.Int64
	closeOnce      sync.Once

	mu         sync.Mutex
	table      map[int64]int64 // nil until InitSchema
	queryErr   error
	connectErr error
}

// NewMemoryCounter creates an in-memory counter with at most maxConns
// sessions, minConns of them opened up front like the PostgreSQL pool
func NewMemoryCounter(ctx context.Context, minConns, maxConns int32, acquireTimeout time.Duration) (*MemoryCounter, error) {
	if acquireTimeout <= 0 {
		acquireTimeout = 5 * time.Second
	}
	if minConns > maxConns {
		minConns = maxConns
	}
	m := &MemoryCounter{acquireTimeout: acquireTimeout}

	pool, err := puddle.NewPool(&puddle.Config[*session]{
		Constructor: m.connect,
		Destructor:  func(*session) {},
		MaxSize:     maxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session pool: %w", err)
	}
	for i := int32(0); i < minConns; i++ {
		if err := pool.CreateResource(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to open session: %w", err)
		}
	}
	m.sessions = pool
	return m, nil
}

func (m *MemoryCounter) connect(context.Context) (*session, error) {
	m.mu.Lock()
	err := m.connectErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &session{id: m.nextID.Add(1)}, nil
}

// SetConnectError makes new sessions fail with err; nil restores them.
// Idle sessions are dropped so the next checkout has to connect.
func (m *MemoryCounter) SetConnectError(err error) {
	m.mu.Lock()
	m.connectErr = err
	m.mu.Unlock()

	if err != nil {
		for _, res := range m.sessions.AcquireAllIdle() {
			res.Destroy()
		}
	}
}

// SetQueryError makes every statement fail with err; nil restores them
func (m *MemoryCounter) SetQueryError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
}

func (m *MemoryCounter) acquire(ctx context.Context) (*puddle.Resource[*session], error) {
	actx, cancel := context.WithTimeout(ctx, m.acquireTimeout)
	defer cancel()

	res, err := m.sessions.Acquire(actx)
	if errors.Is(err, puddle.ErrClosedPool) {
		return nil, ErrStoreClosed
	}
	if err != nil {
		return nil, acquireError(ctx, err, m.Stats())
	}
	return res, nil
}

// InitSchema creates the table and seed row if absent
func (m *MemoryCounter) InitSchema(ctx context.Context) error {
	res, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer res.Release()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queryErr != nil {
		return fmt.Errorf("failed to create status_hits: %w", m.queryErr)
	}
	if m.table == nil {
		m.table = make(map[int64]int64)
	}
	if _, ok := m.table[1]; !ok {
		m.table[1] = 0
	}
	return nil
}

// IncrementAndGetHits adds one hit and returns the new count
func (m *MemoryCounter) IncrementAndGetHits(ctx context.Context) (int64, error) {
	res, err := m.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer res.Release()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queryErr != nil {
		return 0, fmt.Errorf("failed to increment hits: %w", m.queryErr)
	}
	if m.table == nil {
		return 0, fmt.Errorf("failed to increment hits: relation status_hits does not exist")
	}
	hits, ok := m.table[1]
	if !ok {
		return 0, ErrCounterMissing
	}
	hits++
	m.table[1] = hits
	return hits, nil
}

// Rows returns the number of counter rows
func (m *MemoryCounter) Rows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table)
}

// Stats returns a snapshot of the session pool
func (m *MemoryCounter) Stats() PoolStats {
	s := m.sessions.Stat()
	return PoolStats{
		Acquired: s.AcquiredResources(),
		Idle:     s.IdleResources(),
		Total:    s.TotalResources(),
		Max:      s.MaxResources(),
	}
}

// Close destroys every session. Later calls do nothing.
func (m *MemoryCounter) Close() {
	m.closeOnce.Do(m.sessions.Close)
}
