package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/notify"
	"github.com/mcdev12/recruit/go/internal/store"
)

// App is the membership ledger: it owns who belongs to a team and in what role.
type App struct {
	store    store.Store
	notifier *notify.Emitter
	clock    clockwork.Clock
	metrics  *metrics.Metrics
}

// NewApp creates a new roster App
func NewApp(st store.Store, notifier *notify.Emitter, clock clockwork.Clock, m *metrics.Metrics) *App {
	return &App{
		store:    st,
		notifier: notifier,
		clock:    clock,
		metrics:  m,
	}
}

// ListMembers returns the team's memberships, leaders first. Only members
// and the team's owner may read the roster.
func (a *App) ListMembers(ctx context.Context, teamID, actorID uuid.UUID) ([]models.Membership, error) {
	var members []models.Membership
	err := a.store.RunInTx(ctx, func(tx store.Tx) error {
		team, err := LoadTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		if team.OwnerID != actorID {
			if _, err := MembershipOf(ctx, tx, teamID, actorID); err != nil {
				return err
			}
		}
		members, err = tx.ListMembers(ctx, teamID)
		if err != nil {
			return apperr.From(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// RemoveMember deletes target's membership. Owners cannot be removed and
// captains may only remove players and managers.
func (a *App) RemoveMember(ctx context.Context, teamID, targetID, actorID uuid.UUID) (err error) {
	ctx, done := a.metrics.Track(ctx, "roster.RemoveMember", teamAttrs(teamID, actorID)...)
	defer func() { done(err) }()

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		team, err := LoadTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		actor, err := MembershipOf(ctx, tx, teamID, actorID)
		if err != nil {
			return err
		}
		target, err := tx.GetMembership(ctx, teamID, targetID)
		if err != nil {
			return store.NotFoundAs(err, "Member not found")
		}

		if target.Role == models.RoleOwner {
			return apperr.Conflict("The owner cannot be removed; transfer ownership first")
		}
		if !actor.Role.Capabilities().CanRemove(target.Role) {
			return apperr.Unauthorized("Your role cannot remove this member")
		}

		if err := tx.DeleteMembership(ctx, teamID, targetID); err != nil {
			return store.NotFoundAs(err, "Member not found")
		}

		remaining, err := tx.ListMembers(ctx, teamID)
		if err != nil {
			return apperr.From(err)
		}
		payload := map[string]string{"team_id": teamID.String(), "athlete_id": targetID.String()}
		notes := []notify.Note{{
			Recipient: targetID,
			Actor:     actorID,
			Type:      models.NotificationMemberRemoved,
			Title:     "Removed from team",
			Message:   fmt.Sprintf("You were removed from %s", team.Name),
			Payload:   payload,
		}}
		notes = append(notes, notify.Fanout(notify.Leaders(remaining, actorID, targetID), notify.Note{
			Actor:   actorID,
			Type:    models.NotificationMemberRemoved,
			Title:   "Member removed",
			Message: fmt.Sprintf("A member was removed from %s", team.Name),
			Payload: payload,
		})...)
		a.notifier.Emit(ctx, tx, notes...)
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("team_id", teamID.String()).
		Str("athlete_id", targetID.String()).
		Str("actor_id", actorID.String()).
		Msg("member removed")
	return nil
}

// ChangeRole sets target's role. Ownership only moves through
// TransferOwnership, and only the owner may promote to captain.
func (a *App) ChangeRole(ctx context.Context, teamID, targetID, actorID uuid.UUID, newRole models.Role) (result *models.Membership, err error) {
	ctx, done := a.metrics.Track(ctx, "roster.ChangeRole", teamAttrs(teamID, actorID)...)
	defer func() { done(err) }()

	if err := validateAssignableRole(newRole); err != nil {
		return nil, err
	}

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		team, err := LoadTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		actor, err := MembershipOf(ctx, tx, teamID, actorID)
		if err != nil {
			return err
		}
		target, err := tx.GetMembership(ctx, teamID, targetID)
		if err != nil {
			return store.NotFoundAs(err, "Member not found")
		}

		if target.Role == models.RoleOwner {
			return apperr.Conflict("The owner's role can only change through an ownership transfer")
		}
		caps := actor.Role.Capabilities()
		if !caps.CanAssign(newRole) || !caps.CanAssign(target.Role) {
			return apperr.Unauthorized("Your role cannot assign this role")
		}
		if target.Role == newRole {
			result = target
			return nil
		}

		if err := tx.UpdateMembershipRole(ctx, teamID, targetID, newRole); err != nil {
			return store.NotFoundAs(err, "Member not found")
		}
		updated := *target
		updated.Role = newRole
		updated.IsCaptain = newRole.CaptainFlag()
		result = &updated

		a.notifier.Emit(ctx, tx, notify.Note{
			Recipient: targetID,
			Actor:     actorID,
			Type:      models.NotificationRoleChanged,
			Title:     "Role updated",
			Message:   fmt.Sprintf("Your role on %s is now %s", team.Name, newRole),
			Payload: map[string]string{
				"team_id":  teamID.String(),
				"old_role": string(target.Role),
				"new_role": string(newRole),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("team_id", teamID.String()).
		Str("athlete_id", targetID.String()).
		Str("role", string(newRole)).
		Msg("member role changed")
	return result, nil
}

// TransferOwnership hands the team to target. The team row stays locked for
// the whole transaction so concurrent transfers run one after the other, and
// the old owner is demoted before the new one is promoted.
func (a *App) TransferOwnership(ctx context.Context, teamID, targetID, actorID uuid.UUID) (result *models.Team, err error) {
	ctx, done := a.metrics.Track(ctx, "roster.TransferOwnership", teamAttrs(teamID, actorID)...)
	defer func() { done(err) }()

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		team, err := tx.LockTeam(ctx, teamID)
		if err != nil {
			return store.NotFoundAs(err, "Team not found")
		}
		actor, err := MembershipOf(ctx, tx, teamID, actorID)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleOwner || team.OwnerID != actorID {
			return apperr.Unauthorized("Only the owner can transfer ownership")
		}
		if targetID == team.OwnerID {
			return apperr.Conflict("Athlete already owns this team")
		}
		if _, err := tx.GetMembership(ctx, teamID, targetID); err != nil {
			return store.NotFoundAs(err, "Member not found")
		}
		owned, err := store.Exists(tx.GetTeamByOwner(ctx, targetID))
		if err != nil {
			return apperr.From(err)
		}
		if owned {
			return apperr.Conflict("Athlete already owns a team")
		}

		if err := tx.UpdateMembershipRole(ctx, teamID, actorID, models.RoleCaptain); err != nil {
			return apperr.From(err)
		}
		if err := tx.UpdateMembershipRole(ctx, teamID, targetID, models.RoleOwner); err != nil {
			return store.ConflictAs(err, "Team already has an owner")
		}
		now := a.clock.Now().UTC()
		if err := tx.SetTeamOwner(ctx, teamID, targetID, now); err != nil {
			return store.ConflictAs(err, "Athlete already owns a team")
		}
		team.OwnerID = targetID
		team.UpdatedAt = now
		result = team

		members, err := tx.ListMembers(ctx, teamID)
		if err != nil {
			return apperr.From(err)
		}
		payload := map[string]string{
			"team_id":        teamID.String(),
			"previous_owner": actorID.String(),
			"new_owner":      targetID.String(),
		}
		notes := []notify.Note{{
			Recipient: targetID,
			Actor:     actorID,
			Type:      models.NotificationOwnershipTransferred,
			Title:     "You are now the owner",
			Message:   fmt.Sprintf("Ownership of %s was transferred to you", team.Name),
			Payload:   payload,
		}}
		notes = append(notes, notify.Fanout(notify.Everyone(members, actorID, targetID), notify.Note{
			Actor:   actorID,
			Type:    models.NotificationOwnershipTransferred,
			Title:   "New team owner",
			Message: fmt.Sprintf("%s has a new owner", team.Name),
			Payload: payload,
		})...)
		a.notifier.Emit(ctx, tx, notes...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("team_id", teamID.String()).
		Str("previous_owner", actorID.String()).
		Str("new_owner", targetID.String()).
		Msg("ownership transferred")
	return result, nil
}

// Leave removes the caller from the team. The owner has to transfer first.
func (a *App) Leave(ctx context.Context, teamID, actorID uuid.UUID) (err error) {
	ctx, done := a.metrics.Track(ctx, "roster.Leave", teamAttrs(teamID, actorID)...)
	defer func() { done(err) }()

	err = a.store.RunInTx(ctx, func(tx store.Tx) error {
		team, err := LoadTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		actor, err := tx.GetMembership(ctx, teamID, actorID)
		if err != nil {
			return store.NotFoundAs(err, "You are not a member of this team")
		}
		if actor.Role == models.RoleOwner {
			return apperr.Conflict("The owner must transfer ownership before leaving")
		}

		if err := tx.DeleteMembership(ctx, teamID, actorID); err != nil {
			return store.NotFoundAs(err, "You are not a member of this team")
		}

		remaining, err := tx.ListMembers(ctx, teamID)
		if err != nil {
			return apperr.From(err)
		}
		a.notifier.Emit(ctx, tx, notify.Fanout(notify.Leaders(remaining, actorID), notify.Note{
			Actor:   actorID,
			Type:    models.NotificationMemberLeft,
			Title:   "Member left",
			Message: fmt.Sprintf("A member left %s", team.Name),
			Payload: map[string]string{"team_id": teamID.String(), "athlete_id": actorID.String()},
		})...)
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("team_id", teamID.String()).
		Str("athlete_id", actorID.String()).
		Msg("member left team")
	return nil
}

// LoadTeam returns the team or a NotFound failure.
func LoadTeam(ctx context.Context, tx store.Tx, teamID uuid.UUID) (*models.Team, error) {
	team, err := tx.GetTeam(ctx, teamID)
	if err != nil {
		return nil, store.NotFoundAs(err, "Team not found")
	}
	return team, nil
}

// MembershipOf returns the actor's membership on the team, or Unauthorized
// when the actor does not belong to it. It always reads inside tx so the
// role is never taken from the caller.
func MembershipOf(ctx context.Context, tx store.Tx, teamID, actorID uuid.UUID) (*models.Membership, error) {
	m, err := tx.GetMembership(ctx, teamID, actorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("You are not a member of this team")
	}
	if err != nil {
		return nil, apperr.From(err)
	}
	return m, nil
}

// RequireInviteCapability accepts any member whose role can invite, and the
// team's owner even before the owner membership exists.
func RequireInviteCapability(ctx context.Context, tx store.Tx, team *models.Team, actorID uuid.UUID) error {
	m, err := tx.GetMembership(ctx, team.ID, actorID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if team.OwnerID == actorID {
			return nil
		}
		return apperr.Unauthorized("You are not a member of this team")
	case err != nil:
		return apperr.From(err)
	}
	if !m.Role.Capabilities().CanInvite {
		return apperr.Unauthorized("Your role cannot invite athletes")
	}
	return nil
}

// Validation methods

func validateAssignableRole(role models.Role) error {
	if !role.Valid() {
		return apperr.Validation(fmt.Sprintf("invalid role: %s", role))
	}
	if role == models.RoleOwner {
		return apperr.Validation("Ownership can only change through an ownership transfer")
	}
	return nil
}

func teamAttrs(teamID, actorID uuid.UUID) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("team.id", teamID.String()),
		attribute.String("actor.id", actorID.String()),
	}
}
