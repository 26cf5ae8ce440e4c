package applications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/geo"
	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/notify"
	"github.com/mcdev12/recruit/go/internal/store/memory"
)

type ApplicationSuite struct {
	suite.Suite
	ctx   context.Context
	clock *clockwork.FakeClock
	store *memory.Store
	app   *App

	applicant uuid.UUID
	guide     uuid.UUID
}

func TestApplicationSuite(t *testing.T) {
	suite.Run(t, new(ApplicationSuite))
}

func (s *ApplicationSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clockwork.NewFakeClockAt(time.Date(2026, 7, 14, 10, 0, 0, 0, time.UTC))
	s.store = memory.New()
	m := metrics.New(prometheus.NewRegistry())
	s.app = NewApp(s.store, notify.NewEmitter(s.clock, m), s.clock, m)

	s.applicant = s.athlete()
	s.guide = s.athlete()
}

func (s *ApplicationSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *ApplicationSuite) athlete() uuid.UUID {
	id := uuid.New()
	s.store.PutAthlete(models.Athlete{ID: id})
	return id
}

func (s *ApplicationSuite) submit() *models.TeamApplication {
	app, err := s.app.Submit(s.ctx, s.applicant, SubmitRequest{
		GuideID:        s.guide,
		Name:           "  Northside Volleyball ",
		Sport:          "volleyball",
		Classification: "amateur",
		Location:       &geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060},
	})
	s.Require().NoError(err)
	return app
}

func (s *ApplicationSuite) TestSubmit() {
	app := s.submit()
	s.Equal(models.ApplicationStatusPending, app.Status)
	s.Equal("Northside Volleyball", app.Name)

	_, err := s.app.Submit(s.ctx, s.applicant, SubmitRequest{GuideID: s.guide, Name: "Second", Sport: "volleyball"})
	s.ErrorIs(err, apperr.ErrConflict, "one pending application per athlete")
}

func (s *ApplicationSuite) TestSubmitValidation() {
	tests := []struct {
		name string
		req  SubmitRequest
		want error
	}{
		{"missing name", SubmitRequest{GuideID: s.guide, Sport: "volleyball"}, apperr.ErrValidation},
		{"missing sport", SubmitRequest{GuideID: s.guide, Name: "X"}, apperr.ErrValidation},
		{"missing guide", SubmitRequest{Name: "X", Sport: "volleyball"}, apperr.ErrValidation},
		{"self review", SubmitRequest{GuideID: s.applicant, Name: "X", Sport: "volleyball"}, apperr.ErrValidation},
		{"bad location", SubmitRequest{GuideID: s.guide, Name: "X", Sport: "volleyball", Location: &geo.Coordinates{Latitude: 91}}, apperr.ErrValidation},
		{"unknown guide", SubmitRequest{GuideID: uuid.New(), Name: "X", Sport: "volleyball"}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		_, err := s.app.Submit(s.ctx, s.applicant, tt.req)
		s.ErrorIs(err, tt.want, tt.name)
	}
}

func (s *ApplicationSuite) TestSubmitWhenAlreadyOwner() {
	s.store.PutTeam(models.Team{ID: uuid.New(), OwnerID: s.applicant})
	_, err := s.app.Submit(s.ctx, s.applicant, SubmitRequest{GuideID: s.guide, Name: "X", Sport: "volleyball"})
	s.ErrorIs(err, apperr.ErrConflict)
}

func (s *ApplicationSuite) TestApprove() {
	app := s.submit()

	team, err := s.app.Approve(s.ctx, app.ID, s.guide)
	s.Require().NoError(err)
	s.Equal(s.applicant, team.OwnerID)
	s.Equal(models.TeamStatusPendingMembers, team.Status)
	s.Equal("Northside Volleyball", team.Name)
	s.Equal(app.Location, team.Location)

	stored, ok := s.store.Team(team.ID)
	s.Require().True(ok)
	s.Equal(s.applicant, stored.OwnerID)

	stats, ok := s.store.TeamStats(team.ID)
	s.Require().True(ok)
	s.Equal(models.TeamStats{TeamID: team.ID}, stats)

	m, ok := s.store.Membership(s.applicant)
	s.Require().True(ok)
	s.Equal(models.RoleOwner, m.Role)
	s.True(m.IsCaptain)

	reviewed, _ := s.store.Application(app.ID)
	s.Equal(models.ApplicationStatusApproved, reviewed.Status)
	s.Require().NotNil(reviewed.TeamID)
	s.Equal(team.ID, *reviewed.TeamID)

	notes := s.store.NotificationsFor(s.applicant)
	s.Require().Len(notes, 1)
	s.Equal(models.NotificationApplicationApproved, notes[0].Type)
}

func (s *ApplicationSuite) TestApproveRejections() {
	s.Run("not the guide", func() {
		app := s.submit()
		_, err := s.app.Approve(s.ctx, app.ID, s.athlete())
		s.ErrorIs(err, apperr.ErrUnauthorized)
	})

	s.Run("second decision", func() {
		app := s.submit()
		_, err := s.app.Approve(s.ctx, app.ID, s.guide)
		s.Require().NoError(err)

		_, err = s.app.Approve(s.ctx, app.ID, s.guide)
		s.ErrorIs(err, apperr.ErrConflict)
		_, err = s.app.Reject(s.ctx, app.ID, "late", s.guide)
		s.ErrorIs(err, apperr.ErrConflict)
	})

	s.Run("applicant owns a team by now", func() {
		app := s.submit()
		s.store.PutTeam(models.Team{ID: uuid.New(), OwnerID: s.applicant})

		_, err := s.app.Approve(s.ctx, app.ID, s.guide)
		s.ErrorIs(err, apperr.ErrConflict)
		reviewed, _ := s.store.Application(app.ID)
		s.Equal(models.ApplicationStatusPending, reviewed.Status)
	})

	s.Run("applicant joined a team by now", func() {
		app := s.submit()
		s.store.PutMembership(models.Membership{TeamID: uuid.New(), AthleteID: s.applicant, Role: models.RolePlayer})

		_, err := s.app.Approve(s.ctx, app.ID, s.guide)
		s.ErrorIs(err, apperr.ErrConflict)
	})

	s.Run("unknown application", func() {
		_, err := s.app.Approve(s.ctx, uuid.New(), s.guide)
		s.ErrorIs(err, apperr.ErrNotFound)
	})
}

func (s *ApplicationSuite) TestApproveSurvivesNotificationFailure() {
	app := s.submit()
	s.store.FailNotificationsWith(errors.New("outbox down"))

	team, err := s.app.Approve(s.ctx, app.ID, s.guide)
	s.Require().NoError(err)
	_, ok := s.store.Team(team.ID)
	s.True(ok)
}

func (s *ApplicationSuite) TestReject() {
	app := s.submit()

	out, err := s.app.Reject(s.ctx, app.ID, " Needs a home venue ", s.guide)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusRejected, out.Status)
	s.Require().NotNil(out.ReviewNote)
	s.Equal("Needs a home venue", *out.ReviewNote)

	reviewed, _ := s.store.Application(app.ID)
	s.Equal(models.ApplicationStatusRejected, reviewed.Status)
	s.Nil(reviewed.TeamID)

	notes := s.store.NotificationsFor(s.applicant)
	s.Require().Len(notes, 1)
	s.Contains(notes[0].Message, "Needs a home venue")

	_, err = s.app.Reject(s.ctx, app.ID, "", s.athlete())
	s.ErrorIs(err, apperr.ErrUnauthorized)
}
