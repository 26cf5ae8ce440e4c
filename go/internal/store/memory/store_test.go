package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mcdev12/recruit/go/internal/geo"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/store"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	team  uuid.UUID
	owner uuid.UUID
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
	s.owner = uuid.New()
	s.team = uuid.New()
	s.store.PutAthlete(models.Athlete{ID: s.owner, Username: "owner", PrimarySport: "rugby"})
	s.store.PutTeam(models.Team{ID: s.team, Name: "Riverside", Sport: "rugby", OwnerID: s.owner})
	s.store.PutMembership(models.Membership{TeamID: s.team, AthleteID: s.owner, Role: models.RoleOwner, IsCaptain: true})
}

func (s *MemoryStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *MemoryStoreSuite) TestFailedTxLeavesNothing() {
	athlete := uuid.New()
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, func(tx store.Tx) error {
		s.Require().NoError(tx.CreateMembership(s.ctx, models.Membership{TeamID: s.team, AthleteID: athlete, Role: models.RolePlayer}))
		return boom
	})
	s.ErrorIs(err, boom)

	_, ok := s.store.Membership(athlete)
	s.False(ok)
}

func (s *MemoryStoreSuite) TestBestEffortRollsBackOnlyItsWork() {
	athlete := uuid.New()
	s.store.FailNotificationsWith(errors.New("outbox down"))

	err := s.store.RunInTx(s.ctx, func(tx store.Tx) error {
		s.Require().NoError(tx.CreateMembership(s.ctx, models.Membership{TeamID: s.team, AthleteID: athlete, Role: models.RolePlayer}))
		err := tx.BestEffort(s.ctx, func(tx store.Tx) error {
			return tx.InsertNotification(s.ctx, models.Notification{ID: uuid.New(), RecipientID: athlete})
		})
		s.Error(err)
		return nil
	})
	s.Require().NoError(err)

	_, ok := s.store.Membership(athlete)
	s.True(ok)
	s.Empty(s.store.Notifications())
}

func (s *MemoryStoreSuite) TestMembershipUniqueness() {
	s.Run("athlete on two teams", func() {
		other := uuid.New()
		err := s.store.RunInTx(s.ctx, func(tx store.Tx) error {
			return tx.CreateMembership(s.ctx, models.Membership{TeamID: other, AthleteID: s.owner, Role: models.RolePlayer})
		})
		s.ErrorIs(err, store.ErrConflict)
	})

	s.Run("second owner", func() {
		athlete := uuid.New()
		err := s.store.RunInTx(s.ctx, func(tx store.Tx) error {
			return tx.CreateMembership(s.ctx, models.Membership{TeamID: s.team, AthleteID: athlete, Role: models.RoleOwner})
		})
		s.ErrorIs(err, store.ErrConflict)
	})

	s.Run("promote to owner while owner exists", func() {
		athlete := uuid.New()
		s.store.PutMembership(models.Membership{TeamID: s.team, AthleteID: athlete, Role: models.RolePlayer})
		err := s.store.RunInTx(s.ctx, func(tx store.Tx) error {
			return tx.UpdateMembershipRole(s.ctx, s.team, athlete, models.RoleOwner)
		})
		s.ErrorIs(err, store.ErrConflict)
	})
}

func (s *MemoryStoreSuite) TestStatusUpdatesOnlyApplyToPending() {
	now := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	inv := models.Invitation{ID: uuid.New(), TeamID: s.team, AthleteID: uuid.New(), InvitedBy: s.owner, Status: models.InvitationStatusAccepted}
	s.store.PutInvitation(inv)
	req := models.JoinRequest{ID: uuid.New(), TeamID: s.team, AthleteID: uuid.New(), Status: models.JoinRequestStatusRejected}
	s.store.PutJoinRequest(req)

	err := s.store.RunInTx(s.ctx, func(tx store.Tx) error {
		return tx.UpdateInvitationStatus(s.ctx, inv.ID, models.InvitationStatusRejected, now)
	})
	s.ErrorIs(err, store.ErrNotFound)

	err = s.store.RunInTx(s.ctx, func(tx store.Tx) error {
		return tx.ReviewJoinRequest(s.ctx, req.ID, models.JoinRequestStatusAccepted, s.owner, now)
	})
	s.ErrorIs(err, store.ErrNotFound)

	got, _ := s.store.Invitation(inv.ID)
	s.Equal(models.InvitationStatusAccepted, got.Status)
}

func (s *MemoryStoreSuite) TestCreateInvitationRejectsSecondPending() {
	athlete := uuid.New()
	pending := func() models.Invitation {
		return models.Invitation{ID: uuid.New(), TeamID: s.team, AthleteID: athlete, InvitedBy: s.owner, Status: models.InvitationStatusPending}
	}
	s.Require().NoError(s.store.RunInTx(s.ctx, func(tx store.Tx) error {
		return tx.CreateInvitation(s.ctx, pending())
	}))
	err := s.store.RunInTx(s.ctx, func(tx store.Tx) error {
		return tx.CreateInvitation(s.ctx, pending())
	})
	s.ErrorIs(err, store.ErrConflict)
}

func (s *MemoryStoreSuite) TestSearchFreeAgents() {
	origin := geo.Coordinates{Latitude: 51.5, Longitude: -0.12}
	at := func(lat, lon float64) *geo.Coordinates { return &geo.Coordinates{Latitude: lat, Longitude: lon} }
	tennis := "tennis"

	high := models.Athlete{ID: uuid.New(), Username: "high", PrimarySport: "rugby", Rank: 90, Location: at(51.6, -0.1)}
	low := models.Athlete{ID: uuid.New(), Username: "low", PrimarySport: "rugby", Rank: 10, Location: at(51.4, -0.2)}
	secondary := models.Athlete{ID: uuid.New(), Username: "second", PrimarySport: "football", SecondarySport: &tennis, Rank: 50, Location: at(51.5, -0.1)}
	far := models.Athlete{ID: uuid.New(), Username: "far", PrimarySport: "rugby", Rank: 99, Location: at(55.9, -3.2)}
	nowhere := models.Athlete{ID: uuid.New(), Username: "nowhere", PrimarySport: "rugby", Rank: 99}
	member := models.Athlete{ID: uuid.New(), Username: "member", PrimarySport: "rugby", Rank: 99, Location: at(51.5, -0.12)}
	for _, a := range []models.Athlete{high, low, secondary, far, nowhere, member} {
		s.store.PutAthlete(a)
	}
	s.store.PutMembership(models.Membership{TeamID: s.team, AthleteID: member.ID, Role: models.RolePlayer})

	found, err := s.store.SearchFreeAgents(s.ctx, models.CandidateFilter{
		Box:   geo.BoundingBox(origin, 2),
		Sport: "rugby",
		Limit: 10,
	})
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal(high.ID, found[0].ID)
	s.Equal(low.ID, found[1].ID)

	found, err = s.store.SearchFreeAgents(s.ctx, models.CandidateFilter{
		Box:   geo.BoundingBox(origin, 2),
		Sport: "tennis",
		Limit: 1,
	})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(secondary.ID, found[0].ID)

	s.store.FailSearchWith(errors.New("db down"))
	_, err = s.store.SearchFreeAgents(s.ctx, models.CandidateFilter{Box: geo.BoundingBox(origin, 2)})
	s.Error(err)
}

func (s *MemoryStoreSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	called := false
	err := s.store.RunInTx(ctx, func(store.Tx) error {
		called = true
		return nil
	})
	s.ErrorIs(err, context.Canceled)
	s.False(called)
}
