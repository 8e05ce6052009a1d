package cache

import (
	"time"

	"github.com/rs/zerolog"

	"edu-dashboard-api/internal/clock"
)

// DefaultSweepInterval is used when StartJanitor is given a non-positive period.
const DefaultSweepInterval = time.Minute

// Sweeper evicts expired entries.
type Sweeper interface {
	Sweep(now time.Time) int
}

// StartJanitor sweeps s every interval until the returned handle is stopped.
// One janitor serves the whole store; each entry carries its own retention.
func StartJanitor(s Sweeper, clk clock.Clock, interval time.Duration, logger zerolog.Logger) clock.Handle {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	logger.Debug().Dur("interval", interval).Msg("cache janitor started")

	tick := clock.Repeat(clk, interval, func() {
		if n := s.Sweep(clk.Now()); n > 0 {
			logger.Debug().Int("evicted", n).Msg("cache sweep")
		}
	})
	return clock.HandleFunc(func() {
		tick.Stop()
		logger.Debug().Msg("cache janitor stopped")
	})
}
