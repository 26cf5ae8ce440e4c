package applications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/geo"
	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/notify"
	"github.com/mcdev12/recruit/go/internal/store"
)

// App reviews requests to found a new team.
type App struct {
	store    store.Store
	notifier *notify.Emitter
	clock    clockwork.Clock
	metrics  *metrics.Metrics
}

// NewApp creates a new applications App
func NewApp(st store.Store, notifier *notify.Emitter, clock clockwork.Clock, m *metrics.Metrics) *App {
	return &App{
		store:    st,
		notifier: notifier,
		clock:    clock,
		metrics:  m,
	}
}

// SubmitRequest holds the proposed team and the guide who will review it.
type SubmitRequest struct {
	GuideID        uuid.UUID
	Name           string
	Sport          string
	Classification string
	Location       *geo.Coordinates
}

// Submit files a pending application for the actor.
func (a *App) Submit(ctx context.Context, actorID uuid.UUID, req SubmitRequest) (result *models.TeamApplication, err error) {
	ctx, done := a.metrics.Track(ctx, "applications.Submit", attribute.String("actor.id", actorID.String()))
	defer func() { done(err) }()

	if err := validateSubmitRequest(actorID, req); err != nil {
		return nil, err
	}

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		if _, err := tx.GetAthlete(ctx, req.GuideID); err != nil {
			return store.NotFoundAs(err, "Guide not found")
		}
		owns, err := store.Exists(tx.GetTeamByOwner(ctx, actorID))
		if err != nil {
			return apperr.From(err)
		}
		if owns {
			return apperr.Conflict("You already own a team")
		}
		pending, err := store.Exists(tx.GetPendingApplication(ctx, actorID))
		if err != nil {
			return apperr.From(err)
		}
		if pending {
			return apperr.Conflict("Application already pending")
		}

		app := models.TeamApplication{
			ID:             uuid.New(),
			ApplicantID:    actorID,
			GuideID:        req.GuideID,
			Name:           strings.TrimSpace(req.Name),
			Sport:          strings.TrimSpace(req.Sport),
			Classification: strings.TrimSpace(req.Classification),
			Location:       req.Location,
			Status:         models.ApplicationStatusPending,
			CreatedAt:      a.clock.Now().UTC(),
		}
		if err := tx.CreateApplication(ctx, app); err != nil {
			return store.ConflictAs(err, "Application already pending")
		}
		result = &app
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("application_id", result.ID.String()).
		Str("applicant_id", actorID.String()).
		Str("guide_id", req.GuideID.String()).
		Msg("team application submitted")
	return result, nil
}

// Approve founds the team: the application is marked APPROVED, the team and
// its zeroed stats are created, and the applicant becomes its OWNER.
func (a *App) Approve(ctx context.Context, applicationID, reviewerID uuid.UUID) (result *models.Team, err error) {
	ctx, done := a.metrics.Track(ctx, "applications.Approve", attribute.String("application.id", applicationID.String()))
	defer func() { done(err) }()

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		app, err := loadForReview(ctx, tx, applicationID, reviewerID)
		if err != nil {
			return err
		}
		owns, err := store.Exists(tx.GetTeamByOwner(ctx, app.ApplicantID))
		if err != nil {
			return apperr.From(err)
		}
		if owns {
			return apperr.Conflict("Applicant already owns a team")
		}
		member, err := store.Exists(tx.GetMembershipByAthlete(ctx, app.ApplicantID))
		if err != nil {
			return apperr.From(err)
		}
		if member {
			return apperr.Conflict("Applicant already belongs to a team")
		}

		now := a.clock.Now().UTC()
		team := models.Team{
			ID:             uuid.New(),
			Name:           app.Name,
			Sport:          app.Sport,
			Classification: app.Classification,
			Location:       app.Location,
			OwnerID:        app.ApplicantID,
			Status:         models.TeamStatusPendingMembers,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.CreateTeam(ctx, team); err != nil {
			return store.ConflictAs(err, "Applicant already owns a team")
		}
		if err := tx.CreateTeamStats(ctx, models.TeamStats{TeamID: team.ID}); err != nil {
			return apperr.From(err)
		}
		if err := tx.CreateMembership(ctx, models.Membership{
			TeamID:    team.ID,
			AthleteID: app.ApplicantID,
			Role:      models.RoleOwner,
			IsCaptain: true,
			JoinedAt:  now,
		}); err != nil {
			return store.ConflictAs(err, "Applicant already belongs to a team")
		}
		err = tx.ReviewApplication(ctx, app.ID, store.ApplicationReview{
			Status:     models.ApplicationStatusApproved,
			TeamID:     &team.ID,
			ReviewedAt: now,
		})
		if err != nil {
			return store.TransitionAs(err, "Application already reviewed")
		}
		result = &team

		a.notifier.Emit(ctx, tx, notify.Note{
			Recipient: app.ApplicantID,
			Actor:     reviewerID,
			Type:      models.NotificationApplicationApproved,
			Title:     "Team approved",
			Message:   fmt.Sprintf("%s has been approved", team.Name),
			Payload: map[string]string{
				"application_id": app.ID.String(),
				"team_id":        team.ID.String(),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("application_id", applicationID.String()).
		Str("team_id", result.ID.String()).
		Str("owner_id", result.OwnerID.String()).
		Msg("team application approved")
	return result, nil
}

// Reject closes the application with the reviewer's note.
func (a *App) Reject(ctx context.Context, applicationID uuid.UUID, note string, reviewerID uuid.UUID) (result *models.TeamApplication, err error) {
	ctx, done := a.metrics.Track(ctx, "applications.Reject", attribute.String("application.id", applicationID.String()))
	defer func() { done(err) }()

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		app, err := loadForReview(ctx, tx, applicationID, reviewerID)
		if err != nil {
			return err
		}

		now := a.clock.Now().UTC()
		var reviewNote *string
		if trimmed := strings.TrimSpace(note); trimmed != "" {
			reviewNote = &trimmed
		}
		err = tx.ReviewApplication(ctx, app.ID, store.ApplicationReview{
			Status:     models.ApplicationStatusRejected,
			Note:       reviewNote,
			ReviewedAt: now,
		})
		if err != nil {
			return store.TransitionAs(err, "Application already reviewed")
		}
		app.Status = models.ApplicationStatusRejected
		app.ReviewNote = reviewNote
		app.ReviewedAt = &now
		result = app

		msg := fmt.Sprintf("Your application for %s was not approved", app.Name)
		if reviewNote != nil {
			msg += ": " + *reviewNote
		}
		a.notifier.Emit(ctx, tx, notify.Note{
			Recipient: app.ApplicantID,
			Actor:     reviewerID,
			Type:      models.NotificationApplicationRejected,
			Title:     "Team application rejected",
			Message:   msg,
			Payload:   map[string]string{"application_id": app.ID.String()},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("application_id", applicationID.String()).
		Str("reviewer_id", reviewerID.String()).
		Msg("team application rejected")
	return result, nil
}

func loadForReview(ctx context.Context, tx store.Tx, applicationID, reviewerID uuid.UUID) (*models.TeamApplication, error) {
	app, err := tx.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, store.NotFoundAs(err, "Application not found")
	}
	if app.GuideID != reviewerID {
		return nil, apperr.Unauthorized("Only the assigned guide can review this application")
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, apperr.Conflict("Application already reviewed")
	}
	return app, nil
}

// Validation methods

func validateSubmitRequest(actorID uuid.UUID, req SubmitRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Validation("team name is required")
	}
	if strings.TrimSpace(req.Sport) == "" {
		return apperr.Validation("sport is required")
	}
	if req.GuideID == uuid.Nil {
		return apperr.Validation("guide is required")
	}
	if req.GuideID == actorID {
		return apperr.Validation("you cannot review your own application")
	}
	if req.Location != nil && !req.Location.Valid() {
		return apperr.Validation("location is out of range")
	}
	return nil
}
