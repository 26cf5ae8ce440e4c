package invitations

import (
	"context"
	"time"

	"github.com/mcdev12/recruit/go/internal/models"
)

func (s *InvitationSuite) TestSweeperExpiresOnTick() {
	inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- NewSweeper(s.app, s.clock, time.Hour).Run(ctx) }()

	s.Require().NoError(s.clock.BlockUntilContext(s.ctx, 1))
	s.clock.Advance(49 * time.Hour)

	s.Eventually(func() bool {
		got, ok := s.store.Invitation(inv.ID)
		return ok && got.Status == models.InvitationStatusExpired
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.NoError(<-done)
}
