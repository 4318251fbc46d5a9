package traffic

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Killer terminates the process after a delay to simulate process churn.
// The exit is immediate: in-flight requests are not drained.
type Killer struct {
	after    time.Duration
	shutdown func()
	exit     func(code int)
	logger   zerolog.Logger
}

// NewKiller creates a timer that runs shutdown and then exits the process
func NewKiller(after time.Duration, shutdown func(), logger zerolog.Logger) *Killer {
	return &Killer{
		after:    after,
		shutdown: shutdown,
		exit:     os.Exit,
		logger:   logger,
	}
}

// WithExit replaces os.Exit
func (k *Killer) WithExit(exit func(code int)) *Killer {
	k.exit = exit
	return k
}

// Run waits for the delay, then shuts down and exits with status 0
func (k *Killer) Run(ctx context.Context) error {
	k.logger.Info().Dur("after", k.after).Msg("self-termination timer armed")

	if err := sleep(ctx, k.after); err != nil {
		return err
	}

	k.logger.Info().Dur("after", k.after).Msg("Exiting after delay")
	if k.shutdown != nil {
		k.logger.Info().Msg("Cleaning up resources...")
		k.shutdown()
	}
	k.exit(0)
	return nil
}
