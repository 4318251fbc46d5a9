package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewSupervisor(t *testing.T) {
	s := NewSupervisor(context.Background(), zerolog.Nop())
	if s == nil {
		t.Fatal("NewSupervisor() returned nil")
	}

	if s.Count() != 0 {
		t.Errorf("new supervisor should be empty, got %d jobs", s.Count())
	}
}

func TestGoAndStop(t *testing.T) {
	s := NewSupervisor(context.Background(), zerolog.Nop())

	job := s.Go("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if job.Name != "loop" {
		t.Errorf("expected job name loop, got %s", job.Name)
	}
	if s.Count() != 1 {
		t.Errorf("expected 1 job, got %d", s.Count())
	}

	s.Stop()
	s.Wait()

	jobs := s.Jobs()
	if jobs[0].Status != StatusCanceled {
		t.Errorf("expected status canceled, got %s", jobs[0].Status)
	}
}

func TestFailingJobDoesNotStopSiblings(t *testing.T) {
	s := NewSupervisor(context.Background(), zerolog.Nop())

	s.Go("failing", func(context.Context) error {
		return errors.New("boom")
	})
	s.Go("panicking", func(context.Context) error {
		panic("kaboom")
	})

	sibling := make(chan struct{})
	s.Go("sibling", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
			close(sibling)
			return nil
		}
	})

	s.Wait()

	select {
	case <-sibling:
	default:
		t.Fatal("sibling job was canceled by a failing job")
	}

	byName := map[string]Job{}
	for _, j := range s.Jobs() {
		byName[j.Name] = j
	}
	if byName["failing"].Status != StatusFailed {
		t.Errorf("expected failing job to be failed, got %s", byName["failing"].Status)
	}
	if byName["panicking"].Status != StatusFailed || byName["panicking"].Err == nil {
		t.Errorf("expected panic to be recorded as failure, got %+v", byName["panicking"])
	}
	if byName["sibling"].Status != StatusStopped {
		t.Errorf("expected sibling stopped, got %s", byName["sibling"].Status)
	}
}

func TestParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSupervisor(ctx, zerolog.Nop())

	s.Go("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("jobs did not stop after parent cancellation")
	}
}
