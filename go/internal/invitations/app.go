package invitations

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// DefaultTTL is how long an invitation stays acceptable when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// App runs the team-initiated side of recruitment.
type App struct {
	store    store.Store
	notifier *notify.Emitter
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	ttl      time.Duration
}

// NewApp creates a new invitations App. A non-positive ttl falls back to DefaultTTL.
func NewApp(st store.Store, notifier *notify.Emitter, clock clockwork.Clock, m *metrics.Metrics, ttl time.Duration) *App {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &App{
		store:    st,
		notifier: notifier,
		clock:    clock,
		metrics:  m,
		ttl:      ttl,
	}
}

// Invite offers target a place on the team. The pair lock is taken before the
// pending checks so a concurrent Invite or Request for the same pair waits.
func (a *App) Invite(ctx context.Context, teamID, targetID, actorID uuid.UUID) (result *models.Invitation, err error) {
	ctx, done := a.metrics.Track(ctx, "invitations.Invite",
		attribute.String("team.id", teamID.String()),
		attribute.String("actor.id", actorID.String()),
	)
	defer func() { done(err) }()

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		team, err := roster.LoadTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		if err := roster.RequireInviteCapability(ctx, tx, team, actorID); err != nil {
			return err
		}
		if _, err := tx.GetAthlete(ctx, targetID); err != nil {
			return store.NotFoundAs(err, "Athlete not found")
		}
		member, err := store.Exists(tx.GetMembership(ctx, teamID, targetID))
		if err != nil {
			return apperr.From(err)
		}
		if member {
			return apperr.Conflict("Athlete is already a member of this team")
		}

		if err := tx.LockPair(ctx, teamID, targetID); err != nil {
			return apperr.From(err)
		}
		now := a.clock.Now().UTC()
		if err := a.checkNoPendingInvite(ctx, tx, teamID, targetID, now); err != nil {
			return err
		}
		requested, err := store.Exists(tx.GetPendingJoinRequest(ctx, teamID, targetID))
		if err != nil {
			return apperr.From(err)
		}
		if requested {
			return apperr.Conflict("Athlete has already requested to join this team")
		}

		expires := now.Add(a.ttl)
		inv := models.Invitation{
			ID:        uuid.New(),
			TeamID:    teamID,
			AthleteID: targetID,
			InvitedBy: actorID,
			Status:    models.InvitationStatusPending,
			ExpiresAt: &expires,
			CreatedAt: now,
		}
		if err := tx.CreateInvitation(ctx, inv); err != nil {
			return store.ConflictAs(err, "Invite already pending")
		}
		result = &inv

		a.notifier.Emit(ctx, tx, notify.Note{
			Recipient: targetID,
			Actor:     actorID,
			Type:      models.NotificationInvitationReceived,
			Title:     "Team invitation",
			Message:   fmt.Sprintf("You have been invited to join %s", team.Name),
			Payload: map[string]string{
				"invitation_id": inv.ID.String(),
				"team_id":       teamID.String(),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invitation_id", result.ID.String()).
		Str("team_id", teamID.String()).
		Str("athlete_id", targetID.String()).
		Str("actor_id", actorID.String()).
		Msg("invitation created")
	return result, nil
}

// Accept turns a pending invitation into a PLAYER membership. Both writes
// commit together or not at all.
func (a *App) Accept(ctx context.Context, invitationID, actorID uuid.UUID) (result *models.Membership, err error) {
	ctx, done := a.metrics.Track(ctx, "invitations.Accept", attribute.String("invitation.id", invitationID.String()))
	defer func() { done(err) }()

	expired := false
	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		inv, err := a.loadForInvitee(ctx, tx, invitationID, actorID)
		if err != nil {
			return err
		}
		now := a.clock.Now().UTC()
		if inv.ExpiredAt(now) {
			if err := tx.UpdateInvitationStatus(ctx, inv.ID, models.InvitationStatusExpired, now); err != nil {
				return store.TransitionAs(err, "Invitation is no longer pending")
			}
			expired = true
			return nil
		}

		team, err := roster.LoadTeam(ctx, tx, inv.TeamID)
		if err != nil {
			return err
		}
		onTeam, err := store.Exists(tx.GetMembershipByAthlete(ctx, actorID))
		if err != nil {
			return apperr.From(err)
		}
		if onTeam {
			return apperr.Conflict("You already belong to a team")
		}

		m := models.Membership{
			TeamID:    inv.TeamID,
			AthleteID: actorID,
			Role:      models.RolePlayer,
			IsCaptain: models.RolePlayer.CaptainFlag(),
			JoinedAt:  now,
		}
		if err := tx.CreateMembership(ctx, m); err != nil {
			return store.ConflictAs(err, "You already belong to a team")
		}
		if err := tx.UpdateInvitationStatus(ctx, inv.ID, models.InvitationStatusAccepted, now); err != nil {
			return store.TransitionAs(err, "Invitation is no longer pending")
		}
		result = &m

		members, err := tx.ListMembers(ctx, inv.TeamID)
		if err != nil {
			return apperr.From(err)
		}
		recipients := append([]uuid.UUID{inv.InvitedBy}, notify.Leaders(members, actorID, inv.InvitedBy)...)
		a.notifier.Emit(ctx, tx, notify.Fanout(recipients, notify.Note{
			Actor:   actorID,
			Type:    models.NotificationInvitationAccepted,
			Title:   "Invitation accepted",
			Message: fmt.Sprintf("A new player joined %s", team.Name),
			Payload: map[string]string{
				"invitation_id": inv.ID.String(),
				"team_id":       inv.TeamID.String(),
				"athlete_id":    actorID.String(),
			},
		})...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// The EXPIRED mark is committed before the failure is reported.
	if expired {
		return nil, apperr.Conflict("Invitation has expired")
	}

	log.Info().
		Str("invitation_id", invitationID.String()).
		Str("team_id", result.TeamID.String()).
		Str("athlete_id", actorID.String()).
		Msg("invitation accepted")
	return result, nil
}

// Decline rejects a pending invitation addressed to the actor.
func (a *App) Decline(ctx context.Context, invitationID, actorID uuid.UUID) (result *models.Invitation, err error) {
	ctx, done := a.metrics.Track(ctx, "invitations.Decline", attribute.String("invitation.id", invitationID.String()))
	defer func() { done(err) }()

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		inv, err := a.loadForInvitee(ctx, tx, invitationID, actorID)
		if err != nil {
			return err
		}
		now := a.clock.Now().UTC()
		if err := tx.UpdateInvitationStatus(ctx, inv.ID, models.InvitationStatusRejected, now); err != nil {
			return store.TransitionAs(err, "Invitation is no longer pending")
		}
		inv.Status = models.InvitationStatusRejected
		inv.RespondedAt = &now
		result = inv

		a.notifier.Emit(ctx, tx, notify.Note{
			Recipient: inv.InvitedBy,
			Actor:     actorID,
			Type:      models.NotificationInvitationDeclined,
			Title:     "Invitation declined",
			Message:   "Your invitation was declined",
			Payload: map[string]string{
				"invitation_id": inv.ID.String(),
				"team_id":       inv.TeamID.String(),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invitation_id", invitationID.String()).
		Str("athlete_id", actorID.String()).
		Msg("invitation declined")
	return result, nil
}

// Cancel withdraws a pending invitation. The inviter and the team's leaders may cancel.
func (a *App) Cancel(ctx context.Context, invitationID, actorID uuid.UUID) (result *models.Invitation, err error) {
	ctx, done := a.metrics.Track(ctx, "invitations.Cancel", attribute.String("invitation.id", invitationID.String()))
	defer func() { done(err) }()

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		inv, err := tx.GetInvitation(ctx, invitationID)
		if err != nil {
			return store.NotFoundAs(err, "Invitation not found")
		}
		if inv.InvitedBy != actorID {
			actor, err := roster.MembershipOf(ctx, tx, inv.TeamID, actorID)
			if err != nil {
				return err
			}
			if !actor.Role.IsLeader() {
				return apperr.Unauthorized("Only the inviter or a team leader can cancel this invitation")
			}
		}
		if inv.Status != models.InvitationStatusPending {
			return apperr.Conflict("Invitation is no longer pending")
		}

		now := a.clock.Now().UTC()
		if err := tx.UpdateInvitationStatus(ctx, inv.ID, models.InvitationStatusCancelled, now); err != nil {
			return store.TransitionAs(err, "Invitation is no longer pending")
		}
		inv.Status = models.InvitationStatusCancelled
		inv.RespondedAt = &now
		result = inv

		a.notifier.Emit(ctx, tx, notify.Note{
			Recipient: inv.AthleteID,
			Actor:     actorID,
			Type:      models.NotificationInvitationCancelled,
			Title:     "Invitation withdrawn",
			Message:   "A team invitation was withdrawn",
			Payload: map[string]string{
				"invitation_id": inv.ID.String(),
				"team_id":       inv.TeamID.String(),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invitation_id", invitationID.String()).
		Str("actor_id", actorID.String()).
		Msg("invitation cancelled")
	return result, nil
}

// ListForAthlete returns the pending, unexpired invitations addressed to the actor.
func (a *App) ListForAthlete(ctx context.Context, actorID uuid.UUID) ([]models.Invitation, error) {
	var out []models.Invitation
	err := a.store.RunInTx(ctx, func(tx store.Tx) error {
		pending, err := tx.ListPendingInvitationsByAthlete(ctx, actorID)
		if err != nil {
			return apperr.From(err)
		}
		now := a.clock.Now()
		for _, inv := range pending {
			if !inv.ExpiredAt(now) {
				out = append(out, inv)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireStale marks every pending invitation past its expiry as EXPIRED and
// returns how many changed.
func (a *App) ExpireStale(ctx context.Context) (n int64, err error) {
	ctx, done := a.metrics.Track(ctx, "invitations.ExpireStale")
	defer func() { done(err) }()

	now := a.clock.Now().UTC()
	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		n, err = tx.ExpireInvitations(ctx, now)
		if err != nil {
			return apperr.From(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int64("expired", n).Time("now", now).Msg("stale invitations expired")
	return n, nil
}

// Validation methods

// checkNoPendingInvite fails when a live pending invitation exists for the
// pair. A pending one that has already expired is marked EXPIRED instead.
func (a *App) checkNoPendingInvite(ctx context.Context, tx store.Tx, teamID, athleteID uuid.UUID, now time.Time) error {
	inv, err := tx.GetPendingInvitation(ctx, teamID, athleteID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperr.From(err)
	}
	if !inv.ExpiredAt(now) {
		return apperr.Conflict("Invite already pending")
	}
	if err := tx.UpdateInvitationStatus(ctx, inv.ID, models.InvitationStatusExpired, now); err != nil {
		return store.TransitionAs(err, "Invitation is no longer pending")
	}
	return nil
}

func (a *App) loadForInvitee(ctx context.Context, tx store.Tx, invitationID, actorID uuid.UUID) (*models.Invitation, error) {
	inv, err := tx.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, store.NotFoundAs(err, "Invitation not found")
	}
	if inv.AthleteID != actorID {
		return nil, apperr.Unauthorized("This invitation is addressed to another athlete")
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, apperr.Conflict("Invitation is no longer pending")
	}
	return inv, nil
}
