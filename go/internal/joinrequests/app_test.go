package joinrequests

import (
	"context"
	"errors"
	"strings"
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

type JoinRequestSuite struct {
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

func TestJoinRequestSuite(t *testing.T) {
	suite.Run(t, new(JoinRequestSuite))
}

func (s *JoinRequestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clockwork.NewFakeClockAt(time.Date(2026, 6, 2, 7, 30, 0, 0, time.UTC))
	s.store = memory.New()
	m := metrics.New(prometheus.NewRegistry())
	s.app = NewApp(s.store, notify.NewEmitter(s.clock, m), s.clock, m)

	s.owner = s.athlete()
	s.captain = s.athlete()
	s.player = s.athlete()
	s.free = s.athlete()

	s.team = models.Team{ID: uuid.New(), Name: "Eastside Hoops", Sport: "basketball", OwnerID: s.owner, Status: models.TeamStatusActive}
	s.store.PutTeam(s.team)
	s.member(s.team.ID, s.owner, models.RoleOwner)
	s.member(s.team.ID, s.captain, models.RoleCaptain)
	s.member(s.team.ID, s.player, models.RolePlayer)
}

func (s *JoinRequestSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *JoinRequestSuite) athlete() uuid.UUID {
	id := uuid.New()
	s.store.PutAthlete(models.Athlete{ID: id, PrimarySport: "basketball"})
	return id
}

func (s *JoinRequestSuite) member(teamID, athleteID uuid.UUID, role models.Role) {
	s.store.PutMembership(models.Membership{TeamID: teamID, AthleteID: athleteID, Role: role, IsCaptain: role.CaptainFlag()})
}

func (s *JoinRequestSuite) request() *models.JoinRequest {
	req, err := s.app.Request(s.ctx, s.team.ID, s.free, "")
	s.Require().NoError(err)
	return req
}

func (s *JoinRequestSuite) TestRequestNotifiesLeaders() {
	req, err := s.app.Request(s.ctx, s.team.ID, s.free, "I want to join")
	s.Require().NoError(err)
	s.Equal(models.JoinRequestStatusPending, req.Status)
	s.Equal("I want to join", req.Message)

	for _, leader := range []uuid.UUID{s.owner, s.captain} {
		notes := s.store.NotificationsFor(leader)
		s.Require().Len(notes, 1)
		s.Equal(models.NotificationJoinRequestReceived, notes[0].Type)
	}
	s.Empty(s.store.NotificationsFor(s.player))
}

func (s *JoinRequestSuite) TestRequestRejections() {
	s.Run("message at the limit is fine", func() {
		_, err := s.app.Request(s.ctx, s.team.ID, s.free, strings.Repeat("é", models.MaxJoinRequestMessage))
		s.NoError(err)
	})

	s.Run("message too long", func() {
		_, err := s.app.Request(s.ctx, s.team.ID, s.free, strings.Repeat("a", models.MaxJoinRequestMessage+1))
		s.ErrorIs(err, apperr.ErrValidation)
		s.Empty(s.store.JoinRequests())
	})

	s.Run("already a member", func() {
		_, err := s.app.Request(s.ctx, s.team.ID, s.player, "")
		s.ErrorIs(err, apperr.ErrConflict)
	})

	s.Run("pending invitation for the pair", func() {
		s.store.PutInvitation(models.Invitation{ID: uuid.New(), TeamID: s.team.ID, AthleteID: s.free, Status: models.InvitationStatusPending})
		_, err := s.app.Request(s.ctx, s.team.ID, s.free, "")
		s.ErrorIs(err, apperr.ErrConflict)
	})

	s.Run("duplicate pending request", func() {
		s.request()
		_, err := s.app.Request(s.ctx, s.team.ID, s.free, "again")
		s.ErrorIs(err, apperr.ErrConflict)
		s.Len(s.store.JoinRequests(), 1)
	})

	s.Run("unknown team", func() {
		_, err := s.app.Request(s.ctx, uuid.New(), s.free, "")
		s.ErrorIs(err, apperr.ErrNotFound)
	})
}

func (s *JoinRequestSuite) TestAcceptCreatesMembershipAndDeletesRequest() {
	req := s.request()

	out, err := s.app.Decide(s.ctx, req.ID, models.DecisionAccept, s.captain)
	s.Require().NoError(err)
	s.Equal(models.JoinRequestStatusAccepted, out.Status)

	m, ok := s.store.Membership(s.free)
	s.Require().True(ok)
	s.Equal(s.team.ID, m.TeamID)
	s.Equal(models.RolePlayer, m.Role)

	_, exists := s.store.JoinRequest(req.ID)
	s.False(exists)

	accepted := func(id uuid.UUID) int {
		n := 0
		for _, note := range s.store.NotificationsFor(id) {
			if note.Type == models.NotificationJoinRequestAccepted {
				n++
			}
		}
		return n
	}
	s.Equal(1, accepted(s.free))
	s.Equal(1, accepted(s.owner), "other leaders hear about it")
	s.Zero(accepted(s.captain), "the reviewer does not notify themselves")
}

func (s *JoinRequestSuite) TestRejectKeepsRequest() {
	req := s.request()

	out, err := s.app.Decide(s.ctx, req.ID, models.DecisionReject, s.owner)
	s.Require().NoError(err)
	s.Equal(models.JoinRequestStatusRejected, out.Status)

	stored, ok := s.store.JoinRequest(req.ID)
	s.Require().True(ok)
	s.Equal(models.JoinRequestStatusRejected, stored.Status)
	s.Equal(s.owner, *stored.ReviewedBy)
	_, member := s.store.Membership(s.free)
	s.False(member)

	_, err = s.app.Decide(s.ctx, req.ID, models.DecisionAccept, s.owner)
	s.ErrorIs(err, apperr.ErrConflict)
}

func (s *JoinRequestSuite) TestDecideOnRejectedRequestConflicts() {
	req := s.request()
	_, err := s.app.Decide(s.ctx, req.ID, models.DecisionReject, s.owner)
	s.Require().NoError(err)
	before := len(s.store.Notifications())

	_, err = s.app.Decide(s.ctx, req.ID, models.DecisionReject, s.captain)
	s.Require().ErrorIs(err, apperr.ErrConflict)
	s.Equal("Application already reviewed", apperr.From(err).Message)

	stored, ok := s.store.JoinRequest(req.ID)
	s.Require().True(ok)
	s.Equal(models.JoinRequestStatusRejected, stored.Status)
	s.Equal(s.owner, *stored.ReviewedBy, "the first reviewer is kept")
	s.Len(s.store.Notifications(), before)
}

func (s *JoinRequestSuite) TestDecideAfterAcceptIsNotFound() {
	req := s.request()
	_, err := s.app.Decide(s.ctx, req.ID, models.DecisionAccept, s.owner)
	s.Require().NoError(err)
	before := len(s.store.Notifications())

	_, err = s.app.Decide(s.ctx, req.ID, models.DecisionReject, s.captain)
	s.Require().ErrorIs(err, apperr.ErrNotFound)
	s.Equal("Join request not found", apperr.From(err).Message)

	m, member := s.store.Membership(s.free)
	s.Require().True(member, "the accepted membership stays")
	s.Equal(s.team.ID, m.TeamID)
	s.Len(s.store.Notifications(), before)
}

func (s *JoinRequestSuite) TestDecideRejections() {
	s.Run("player cannot decide", func() {
		req := s.request()
		_, err := s.app.Decide(s.ctx, req.ID, models.DecisionAccept, s.player)
		s.ErrorIs(err, apperr.ErrUnauthorized)
	})

	s.Run("leader of another team cannot decide", func() {
		req := s.request()
		otherOwner := s.athlete()
		other := models.Team{ID: uuid.New(), OwnerID: otherOwner}
		s.store.PutTeam(other)
		s.member(other.ID, otherOwner, models.RoleOwner)

		_, err := s.app.Decide(s.ctx, req.ID, models.DecisionAccept, otherOwner)
		s.ErrorIs(err, apperr.ErrUnauthorized)
	})

	s.Run("requester joined another team meanwhile", func() {
		req := s.request()
		other := models.Team{ID: uuid.New(), OwnerID: s.athlete()}
		s.store.PutTeam(other)
		s.member(other.ID, s.free, models.RolePlayer)

		_, err := s.app.Decide(s.ctx, req.ID, models.DecisionAccept, s.owner)
		s.ErrorIs(err, apperr.ErrConflict)
		stored, _ := s.store.JoinRequest(req.ID)
		s.Equal(models.JoinRequestStatusPending, stored.Status)
	})

	s.Run("invalid decision", func() {
		req := s.request()
		_, err := s.app.Decide(s.ctx, req.ID, models.Decision("MAYBE"), s.owner)
		s.ErrorIs(err, apperr.ErrValidation)
	})

	s.Run("unknown request", func() {
		_, err := s.app.Decide(s.ctx, uuid.New(), models.DecisionAccept, s.owner)
		s.ErrorIs(err, apperr.ErrNotFound)
	})
}

func (s *JoinRequestSuite) TestDecideSurvivesNotificationFailure() {
	req := s.request()
	s.store.FailNotificationsWith(errors.New("outbox down"))

	_, err := s.app.Decide(s.ctx, req.ID, models.DecisionAccept, s.owner)
	s.Require().NoError(err)
	_, member := s.store.Membership(s.free)
	s.True(member)
}

func (s *JoinRequestSuite) TestWithdraw() {
	s.Run("requester withdraws", func() {
		req := s.request()
		s.Require().NoError(s.app.Withdraw(s.ctx, req.ID, s.free))
		_, ok := s.store.JoinRequest(req.ID)
		s.False(ok)
	})

	s.Run("someone else", func() {
		req := s.request()
		err := s.app.Withdraw(s.ctx, req.ID, s.owner)
		s.ErrorIs(err, apperr.ErrUnauthorized)
	})

	s.Run("after rejection", func() {
		req := s.request()
		_, err := s.app.Decide(s.ctx, req.ID, models.DecisionReject, s.owner)
		s.Require().NoError(err)

		err = s.app.Withdraw(s.ctx, req.ID, s.free)
		s.ErrorIs(err, apperr.ErrConflict)
	})
}

func (s *JoinRequestSuite) TestListPendingForTeam() {
	first := s.request()
	s.clock.Advance(time.Minute)
	second := s.athlete()
	_, err := s.app.Request(s.ctx, s.team.ID, second, "me too")
	s.Require().NoError(err)

	list, err := s.app.ListPendingForTeam(s.ctx, s.team.ID, s.captain)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)

	_, err = s.app.ListPendingForTeam(s.ctx, s.team.ID, s.player)
	s.ErrorIs(err, apperr.ErrUnauthorized)
}
