package invitations

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Sweeper expires stale invitations on a fixed interval. Accept and Invite
// already expire lazily; the sweep keeps ListMine and the table tidy.
type Sweeper struct {
	app      *App
	clock    clockwork.Clock
	interval time.Duration
}

func NewSweeper(app *App, clock clockwork.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{app: app, clock: clock, interval: interval}
}

// Run sweeps until ctx is done. A failed sweep is logged and retried on the
// next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("invitation sweeper started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if _, err := s.app.ExpireStale(ctx); err != nil {
				log.Error().Err(err).Msg("invitation sweep failed")
			}
		}
	}
}
