package traffic

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/dsjohal14/hitlog/internal/libs/config"
	"github.com/rs/zerolog"
)

// Message prefixes of the two built-in emitters
const (
	SteadyPrefix = "PERIODIC "
	BurstPrefix  = "BIG PERIODIC "
)

// Emitter logs one generated record of a fixed size per interval
type Emitter struct {
	name        string
	bytesPerLog int
	interval    time.Duration
	prefix      string
	logger      zerolog.Logger
	rand        *rand.Rand
	emitted     atomic.Uint64
}

// NewEmitter creates an emitter from its config. cfg.LogsPerSecond must be positive.
func NewEmitter(name string, cfg config.EmitterConfig, prefix string, logger zerolog.Logger) *Emitter {
	return &Emitter{
		name:        name,
		bytesPerLog: cfg.BytesPerLog,
		interval:    cfg.Interval(),
		prefix:      prefix,
		logger:      logger.With().Str("generator", name).Logger(),
		rand:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Name returns the emitter name
func (e *Emitter) Name() string {
	return e.name
}

// Emitted returns how many records have been written
func (e *Emitter) Emitted() uint64 {
	return e.emitted.Load()
}

// Run emits until ctx ends, sleeping one interval after every record
func (e *Emitter) Run(ctx context.Context) error {
	e.logger.Info().
		Int("bytes_per_log", e.bytesPerLog).
		Dur("interval", e.interval).
		Msg("periodic logging started")

	for {
		e.emit()
		if err := sleep(ctx, e.interval); err != nil {
			return err
		}
	}
}

func (e *Emitter) emit() {
	seq := e.emitted.Add(1)
	e.logger.Info().
		Uint64("seq", seq).
		Msg(GenerateText(e.rand, e.bytesPerLog, e.prefix))
}

// sleep waits for d or until ctx ends
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
