// Package jobs provides supervision for long-lived background tasks.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Task is a background loop that runs until its context ends
type Task func(ctx context.Context) error

// Job records one supervised task
type Job struct {
	Name      string
	Status    string
	StartedAt time.Time
	Err       error
}

// Job status values
const (
	StatusRunning  = "running"
	StatusStopped  = "stopped"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// Supervisor runs named tasks under a shared context.
// A failing task is logged and ends alone; the others keep running.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	logger zerolog.Logger

	mu   sync.Mutex
	jobs []*Job
}

// NewSupervisor creates a supervisor whose tasks stop when parent ends or Stop is called
func NewSupervisor(parent context.Context, logger zerolog.Logger) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		jobs:   make([]*Job, 0),
	}
}

// Go starts task in its own goroutine
func (s *Supervisor) Go(name string, task Task) *Job {
	job := &Job{
		Name:      name,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()

	s.logger.Info().Str("job", name).Msg("background job started")

	s.group.Go(func() error {
		err := run(s.ctx, task)
		s.finish(job, err)
		return nil
	})
	return job
}

func run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task(ctx)
}

func (s *Supervisor) finish(job *Job, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job.Err = err
	switch {
	case err == nil:
		job.Status = StatusStopped
		s.logger.Info().Str("job", job.Name).Msg("background job stopped")
	case errors.Is(err, context.Canceled):
		job.Status = StatusCanceled
		s.logger.Info().Str("job", job.Name).Msg("background job canceled")
	default:
		job.Status = StatusFailed
		s.logger.Error().Err(err).Str("job", job.Name).Msg("background job failed")
	}
}

// Stop cancels every task
func (s *Supervisor) Stop() {
	s.cancel()
}

// Wait blocks until every started task has returned
func (s *Supervisor) Wait() {
	_ = s.group.Wait()
}

// Count returns the number of started tasks
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Jobs returns a snapshot of every started task
func (s *Supervisor) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Job, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = *j
	}
	return out
}
