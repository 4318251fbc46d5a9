package traffic

import (
	"github.com/dsjohal14/hitlog/internal/libs/config"
	"github.com/dsjohal14/hitlog/internal/libs/jobs"
	"github.com/rs/zerolog"
)

// Start registers every generator enabled in cfg with sup and returns how many were started.
// shutdown runs before the self-termination timer exits the process.
func Start(sup *jobs.Supervisor, cfg *config.Config, shutdown func(), logger zerolog.Logger) int {
	started := 0

	if cfg.Kill.Enabled {
		k := NewKiller(cfg.Kill.After, shutdown, logger)
		sup.Go("periodic-kill", k.Run)
		started++
	}
	if cfg.Steady.Enabled {
		e := NewEmitter("periodic-logging", cfg.Steady, SteadyPrefix, logger)
		sup.Go(e.Name(), e.Run)
		started++
	}
	if cfg.Burst.Enabled {
		e := NewEmitter("periodic-big-logging", cfg.Burst, BurstPrefix, logger)
		sup.Go(e.Name(), e.Run)
		started++
	}

	logger.Info().Int("generators", started).Msg("traffic generators configured")
	return started
}
