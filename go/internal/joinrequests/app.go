package joinrequests

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/notify"
	"github.com/mcdev12/recruit/go/internal/roster"
	"github.com/mcdev12/recruit/go/internal/store"
)

// App runs the athlete-initiated side of recruitment.
type App struct {
	store    store.Store
	notifier *notify.Emitter
	clock    clockwork.Clock
	metrics  *metrics.Metrics
}

// NewApp creates a new join-request App
func NewApp(st store.Store, notifier *notify.Emitter, clock clockwork.Clock, m *metrics.Metrics) *App {
	return &App{
		store:    st,
		notifier: notifier,
		clock:    clock,
		metrics:  m,
	}
}

// Request asks to join a team and notifies every leader.
func (a *App) Request(ctx context.Context, teamID, actorID uuid.UUID, message string) (result *models.JoinRequest, err error) {
	ctx, done := a.metrics.Track(ctx, "joinrequests.Request",
		attribute.String("team.id", teamID.String()),
		attribute.String("actor.id", actorID.String()),
	)
	defer func() { done(err) }()

	if err := validateMessage(message); err != nil {
		return nil, err
	}

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		team, err := roster.LoadTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		member, err := store.Exists(tx.GetMembership(ctx, teamID, actorID))
		if err != nil {
			return apperr.From(err)
		}
		if member {
			return apperr.Conflict("You are already a member of this team")
		}

		if err := tx.LockPair(ctx, teamID, actorID); err != nil {
			return apperr.From(err)
		}
		invited, err := store.Exists(tx.GetPendingInvitation(ctx, teamID, actorID))
		if err != nil {
			return apperr.From(err)
		}
		if invited {
			return apperr.Conflict("You already have a pending invitation from this team")
		}
		requested, err := store.Exists(tx.GetPendingJoinRequest(ctx, teamID, actorID))
		if err != nil {
			return apperr.From(err)
		}
		if requested {
			return apperr.Conflict("Join request already pending")
		}

		req := models.JoinRequest{
			ID:        uuid.New(),
			TeamID:    teamID,
			AthleteID: actorID,
			Message:   message,
			Status:    models.JoinRequestStatusPending,
			CreatedAt: a.clock.Now().UTC(),
		}
		if err := tx.CreateJoinRequest(ctx, req); err != nil {
			return store.ConflictAs(err, "Join request already pending")
		}
		result = &req

		members, err := tx.ListMembers(ctx, teamID)
		if err != nil {
			return apperr.From(err)
		}
		a.notifier.Emit(ctx, tx, notify.Fanout(notify.Leaders(members), notify.Note{
			Actor:   actorID,
			Type:    models.NotificationJoinRequestReceived,
			Title:   "New join request",
			Message: fmt.Sprintf("An athlete asked to join %s", team.Name),
			Payload: map[string]string{
				"request_id": req.ID.String(),
				"team_id":    teamID.String(),
				"athlete_id": actorID.String(),
			},
		})...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", result.ID.String()).
		Str("team_id", teamID.String()).
		Str("athlete_id", actorID.String()).
		Msg("join request created")
	return result, nil
}

// Decide accepts or rejects a pending request. An accepted request becomes a
// PLAYER membership and the request row is removed; a rejected one is kept.
func (a *App) Decide(ctx context.Context, requestID uuid.UUID, decision models.Decision, reviewerID uuid.UUID) (result *models.JoinRequest, err error) {
	ctx, done := a.metrics.Track(ctx, "joinrequests.Decide",
		attribute.String("request.id", requestID.String()),
		attribute.String("decision", string(decision)),
	)
	defer func() { done(err) }()

	if decision != models.DecisionAccept && decision != models.DecisionReject {
		return nil, apperr.Validation(fmt.Sprintf("invalid decision: %s", decision))
	}

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		req, err := tx.GetJoinRequest(ctx, requestID)
		if err != nil {
			return store.NotFoundAs(err, "Join request not found")
		}
		team, err := roster.LoadTeam(ctx, tx, req.TeamID)
		if err != nil {
			return err
		}
		reviewer, err := roster.MembershipOf(ctx, tx, req.TeamID, reviewerID)
		if err != nil {
			return err
		}
		if !reviewer.Role.Capabilities().CanManageRequests {
			return apperr.Unauthorized("Only the owner or a captain can review join requests")
		}
		if req.Status != models.JoinRequestStatusPending {
			return apperr.Conflict("Application already reviewed")
		}

		now := a.clock.Now().UTC()
		if decision == models.DecisionReject {
			if err := tx.ReviewJoinRequest(ctx, req.ID, models.JoinRequestStatusRejected, reviewerID, now); err != nil {
				return store.TransitionAs(err, "Application already reviewed")
			}
			req.Status = models.JoinRequestStatusRejected
			req.ReviewedBy = &reviewerID
			req.ReviewedAt = &now
			result = req

			a.notifier.Emit(ctx, tx, notify.Note{
				Recipient: req.AthleteID,
				Actor:     reviewerID,
				Type:      models.NotificationJoinRequestRejected,
				Title:     "Join request declined",
				Message:   fmt.Sprintf("Your request to join %s was declined", team.Name),
				Payload:   map[string]string{"request_id": req.ID.String(), "team_id": team.ID.String()},
			})
			return nil
		}

		onTeam, err := store.Exists(tx.GetMembershipByAthlete(ctx, req.AthleteID))
		if err != nil {
			return apperr.From(err)
		}
		if onTeam {
			return apperr.Conflict("Athlete already belongs to a team")
		}
		m := models.Membership{
			TeamID:    req.TeamID,
			AthleteID: req.AthleteID,
			Role:      models.RolePlayer,
			IsCaptain: models.RolePlayer.CaptainFlag(),
			JoinedAt:  now,
		}
		if err := tx.CreateMembership(ctx, m); err != nil {
			return store.ConflictAs(err, "Athlete already belongs to a team")
		}
		if err := tx.ReviewJoinRequest(ctx, req.ID, models.JoinRequestStatusAccepted, reviewerID, now); err != nil {
			return store.TransitionAs(err, "Application already reviewed")
		}
		if err := tx.DeleteJoinRequest(ctx, req.ID); err != nil {
			return apperr.From(err)
		}
		req.Status = models.JoinRequestStatusAccepted
		req.ReviewedBy = &reviewerID
		req.ReviewedAt = &now
		result = req

		members, err := tx.ListMembers(ctx, req.TeamID)
		if err != nil {
			return apperr.From(err)
		}
		payload := map[string]string{
			"request_id": req.ID.String(),
			"team_id":    team.ID.String(),
			"athlete_id": req.AthleteID.String(),
		}
		notes := []notify.Note{{
			Recipient: req.AthleteID,
			Actor:     reviewerID,
			Type:      models.NotificationJoinRequestAccepted,
			Title:     "Welcome to the team",
			Message:   fmt.Sprintf("Your request to join %s was accepted", team.Name),
			Payload:   payload,
		}}
		notes = append(notes, notify.Fanout(notify.Leaders(members, reviewerID, req.AthleteID), notify.Note{
			Actor:   reviewerID,
			Type:    models.NotificationJoinRequestAccepted,
			Title:   "New team member",
			Message: fmt.Sprintf("A new player joined %s", team.Name),
			Payload: payload,
		})...)
		a.notifier.Emit(ctx, tx, notes...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", requestID.String()).
		Str("decision", string(decision)).
		Str("reviewer_id", reviewerID.String()).
		Msg("join request decided")
	return result, nil
}

// Withdraw deletes the actor's own pending request.
func (a *App) Withdraw(ctx context.Context, requestID, actorID uuid.UUID) (err error) {
	ctx, done := a.metrics.Track(ctx, "joinrequests.Withdraw", attribute.String("request.id", requestID.String()))
	defer func() { done(err) }()

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		req, err := tx.GetJoinRequest(ctx, requestID)
		if err != nil {
			return store.NotFoundAs(err, "Join request not found")
		}
		if req.AthleteID != actorID {
			return apperr.Unauthorized("Only the requester can withdraw this request")
		}
		if req.Status != models.JoinRequestStatusPending {
			return apperr.Conflict("Application already reviewed")
		}
		if err := tx.DeleteJoinRequest(ctx, req.ID); err != nil {
			return store.NotFoundAs(err, "Join request not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("request_id", requestID.String()).
		Str("athlete_id", actorID.String()).
		Msg("join request withdrawn")
	return nil
}

// ListPendingForTeam returns the team's pending requests, oldest first. Only
// members who can manage requests may see them.
func (a *App) ListPendingForTeam(ctx context.Context, teamID, actorID uuid.UUID) ([]models.JoinRequest, error) {
	var out []models.JoinRequest
	err := a.store.RunInTx(ctx, func(tx store.Tx) error {
		if _, err := roster.LoadTeam(ctx, tx, teamID); err != nil {
			return err
		}
		actor, err := roster.MembershipOf(ctx, tx, teamID, actorID)
		if err != nil {
			return err
		}
		if !actor.Role.Capabilities().CanManageRequests {
			return apperr.Unauthorized("Only the owner or a captain can review join requests")
		}
		out, err = tx.ListPendingJoinRequests(ctx, teamID)
		if err != nil {
			return apperr.From(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Validation methods

func validateMessage(message string) error {
	if utf8.RuneCountInString(message) > models.MaxJoinRequestMessage {
		return apperr.Validation(fmt.Sprintf("message must be at most %d characters", models.MaxJoinRequestMessage))
	}
	return nil
}
