package invitations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/notify"
	"github.com/mcdev12/recruit/go/internal/store/memory"
)

type InvitationSuite struct {
	suite.Suite
	ctx   context.Context
	clock *clockwork.FakeClock
	store *memory.Store
	app   *App

	team    models.Team
	owner   uuid.UUID
	captain uuid.UUID
	player  uuid.UUID
	free    uuid.UUID
}

func TestInvitationSuite(t *testing.T) {
	suite.Run(t, new(InvitationSuite))
}

func (s *InvitationSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clockwork.NewFakeClockAt(time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC))
	s.store = memory.New()
	m := metrics.New(prometheus.NewRegistry())
	s.app = NewApp(s.store, notify.NewEmitter(s.clock, m), s.clock, m, 48*time.Hour)

	s.owner = s.athlete()
	s.captain = s.athlete()
	s.player = s.athlete()
	s.free = s.athlete()

	s.team = models.Team{ID: uuid.New(), Name: "Riverside RFC", Sport: "rugby", OwnerID: s.owner, Status: models.TeamStatusActive}
	s.store.PutTeam(s.team)
	s.member(s.team.ID, s.owner, models.RoleOwner)
	s.member(s.team.ID, s.captain, models.RoleCaptain)
	s.member(s.team.ID, s.player, models.RolePlayer)
}

func (s *InvitationSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *InvitationSuite) athlete() uuid.UUID {
	id := uuid.New()
	s.store.PutAthlete(models.Athlete{ID: id, Username: id.String()[:8], PrimarySport: "rugby"})
	return id
}

func (s *InvitationSuite) member(teamID, athleteID uuid.UUID, role models.Role) {
	s.store.PutMembership(models.Membership{TeamID: teamID, AthleteID: athleteID, Role: role, IsCaptain: role.CaptainFlag()})
}

func (s *InvitationSuite) TestInvite() {
	inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.player)
	s.Require().NoError(err)
	s.Equal(models.InvitationStatusPending, inv.Status)
	s.Equal(s.player, inv.InvitedBy)
	s.Require().NotNil(inv.ExpiresAt)
	s.Equal(s.clock.Now().Add(48*time.Hour), *inv.ExpiresAt)

	notes := s.store.NotificationsFor(s.free)
	s.Require().Len(notes, 1)
	s.Equal(models.NotificationInvitationReceived, notes[0].Type)
}

func (s *InvitationSuite) TestInviteRejections() {
	s.Run("duplicate pending invite", func() {
		_, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
		s.Require().NoError(err)

		_, err = s.app.Invite(s.ctx, s.team.ID, s.free, s.captain)
		s.ErrorIs(err, apperr.ErrConflict)
		s.Equal("Invite already pending", apperr.From(err).Message)
		s.Len(s.store.Invitations(), 1)
	})

	s.Run("pending join request for the pair", func() {
		s.store.PutJoinRequest(models.JoinRequest{ID: uuid.New(), TeamID: s.team.ID, AthleteID: s.free, Status: models.JoinRequestStatusPending})

		_, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
		s.ErrorIs(err, apperr.ErrConflict)
		s.Empty(s.store.Invitations())
	})

	s.Run("target already on the team", func() {
		_, err := s.app.Invite(s.ctx, s.team.ID, s.player, s.owner)
		s.ErrorIs(err, apperr.ErrConflict)
	})

	s.Run("actor outside the team", func() {
		_, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.athlete())
		s.ErrorIs(err, apperr.ErrUnauthorized)
	})

	s.Run("unknown target", func() {
		_, err := s.app.Invite(s.ctx, s.team.ID, uuid.New(), s.owner)
		s.ErrorIs(err, apperr.ErrNotFound)
	})

	s.Run("unknown team", func() {
		_, err := s.app.Invite(s.ctx, uuid.New(), s.free, s.owner)
		s.ErrorIs(err, apperr.ErrNotFound)
	})
}

func (s *InvitationSuite) TestOwnerInvitesBeforeOwnerMembershipExists() {
	founder := s.athlete()
	team := models.Team{ID: uuid.New(), Name: "New Side", OwnerID: founder, Status: models.TeamStatusPendingMembers}
	s.store.PutTeam(team)

	_, err := s.app.Invite(s.ctx, team.ID, s.free, founder)
	s.NoError(err)
}

func (s *InvitationSuite) TestExpiredPendingInviteIsReplaced() {
	first, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
	s.Require().NoError(err)

	s.clock.Advance(49 * time.Hour)
	second, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)

	old, _ := s.store.Invitation(first.ID)
	s.Equal(models.InvitationStatusExpired, old.Status)
}

func (s *InvitationSuite) TestConcurrentInvitesOneWins() {
	const callers = 8
	actors := []uuid.UUID{s.owner, s.captain, s.player}

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.app.Invite(s.ctx, s.team.ID, s.free, actors[i%len(actors)])
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		s.ErrorIs(err, apperr.ErrConflict)
	}
	s.Equal(1, wins)
	s.Len(s.store.Invitations(), 1)
}

func (s *InvitationSuite) TestAccept() {
	inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.player)
	s.Require().NoError(err)

	m, err := s.app.Accept(s.ctx, inv.ID, s.free)
	s.Require().NoError(err)
	s.Equal(models.RolePlayer, m.Role)
	s.False(m.IsCaptain)
	s.Equal(s.team.ID, m.TeamID)

	stored, _ := s.store.Invitation(inv.ID)
	s.Equal(models.InvitationStatusAccepted, stored.Status)
	s.NotNil(stored.RespondedAt)

	s.Len(s.store.NotificationsFor(s.player), 1, "inviter hears about it")
	s.Len(s.store.NotificationsFor(s.owner), 1)
	s.Len(s.store.NotificationsFor(s.captain), 1)
}

func (s *InvitationSuite) TestAcceptRejections() {
	s.Run("someone else's invitation", func() {
		inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
		s.Require().NoError(err)

		_, err = s.app.Accept(s.ctx, inv.ID, s.athlete())
		s.ErrorIs(err, apperr.ErrUnauthorized)
	})

	s.Run("already on another team", func() {
		inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
		s.Require().NoError(err)
		other := models.Team{ID: uuid.New(), Name: "Elsewhere", OwnerID: s.athlete()}
		s.store.PutTeam(other)
		s.member(other.ID, s.free, models.RolePlayer)

		_, err = s.app.Accept(s.ctx, inv.ID, s.free)
		s.ErrorIs(err, apperr.ErrConflict)
		stored, _ := s.store.Invitation(inv.ID)
		s.Equal(models.InvitationStatusPending, stored.Status, "nothing is written on failure")
	})

	s.Run("expired invitation is marked expired", func() {
		inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
		s.Require().NoError(err)
		s.clock.Advance(48 * time.Hour)

		_, err = s.app.Accept(s.ctx, inv.ID, s.free)
		s.ErrorIs(err, apperr.ErrConflict)
		stored, _ := s.store.Invitation(inv.ID)
		s.Equal(models.InvitationStatusExpired, stored.Status)
		_, member := s.store.Membership(s.free)
		s.False(member)
	})

	s.Run("accepting twice", func() {
		inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
		s.Require().NoError(err)
		_, err = s.app.Accept(s.ctx, inv.ID, s.free)
		s.Require().NoError(err)

		_, err = s.app.Accept(s.ctx, inv.ID, s.free)
		s.ErrorIs(err, apperr.ErrConflict)
	})

	s.Run("unknown invitation", func() {
		_, err := s.app.Accept(s.ctx, uuid.New(), s.free)
		s.ErrorIs(err, apperr.ErrNotFound)
	})
}

func (s *InvitationSuite) TestAcceptSurvivesNotificationFailure() {
	inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
	s.Require().NoError(err)
	s.store.FailNotificationsWith(errors.New("outbox down"))

	_, err = s.app.Accept(s.ctx, inv.ID, s.free)
	s.Require().NoError(err)
	_, member := s.store.Membership(s.free)
	s.True(member)
}

func (s *InvitationSuite) TestDeclineAndCancel() {
	s.Run("invitee declines", func() {
		inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.player)
		s.Require().NoError(err)

		out, err := s.app.Decline(s.ctx, inv.ID, s.free)
		s.Require().NoError(err)
		s.Equal(models.InvitationStatusRejected, out.Status)
		s.Len(s.store.NotificationsFor(s.player), 1)
	})

	s.Run("inviter cancels", func() {
		inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.player)
		s.Require().NoError(err)

		out, err := s.app.Cancel(s.ctx, inv.ID, s.player)
		s.Require().NoError(err)
		s.Equal(models.InvitationStatusCancelled, out.Status)
		s.Len(s.store.NotificationsFor(s.free), 2, "received then cancelled")
	})

	s.Run("captain cancels someone else's invite", func() {
		inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.player)
		s.Require().NoError(err)

		_, err = s.app.Cancel(s.ctx, inv.ID, s.captain)
		s.NoError(err)
	})

	s.Run("player cannot cancel someone else's invite", func() {
		inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.captain)
		s.Require().NoError(err)

		_, err = s.app.Cancel(s.ctx, inv.ID, s.player)
		s.ErrorIs(err, apperr.ErrUnauthorized)
	})

	s.Run("cancel after decline", func() {
		inv, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
		s.Require().NoError(err)
		_, err = s.app.Decline(s.ctx, inv.ID, s.free)
		s.Require().NoError(err)

		_, err = s.app.Cancel(s.ctx, inv.ID, s.owner)
		s.ErrorIs(err, apperr.ErrConflict)
	})
}

func (s *InvitationSuite) TestListForAthleteAndExpireStale() {
	other := models.Team{ID: uuid.New(), Name: "Hillside", OwnerID: s.athlete()}
	s.store.PutTeam(other)

	_, err := s.app.Invite(s.ctx, s.team.ID, s.free, s.owner)
	s.Require().NoError(err)
	s.clock.Advance(24 * time.Hour)
	_, err = s.app.Invite(s.ctx, other.ID, s.free, other.OwnerID)
	s.Require().NoError(err)

	list, err := s.app.ListForAthlete(s.ctx, s.free)
	s.Require().NoError(err)
	s.Len(list, 2)

	s.clock.Advance(25 * time.Hour)
	list, err = s.app.ListForAthlete(s.ctx, s.free)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(other.ID, list[0].TeamID)

	n, err := s.app.ExpireStale(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	n, err = s.app.ExpireStale(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}
