package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/db"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/sqlutil"
)

func (t *txStore) GetInvitation(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	row, err := t.q.GetInvitation(ctx, id)
	if err != nil {
		return nil, translate(err, "get invitation")
	}
	inv := invitationFromDB(row)
	return &inv, nil
}

func (t *txStore) GetPendingInvitation(ctx context.Context, teamID, athleteID uuid.UUID) (*models.Invitation, error) {
	row, err := t.q.GetPendingInvitation(ctx, db.PairParams{TeamID: teamID, AthleteID: athleteID})
	if err != nil {
		return nil, translate(err, "get pending invitation")
	}
	inv := invitationFromDB(row)
	return &inv, nil
}

func (t *txStore) ListPendingInvitationsByAthlete(ctx context.Context, athleteID uuid.UUID) ([]models.Invitation, error) {
	rows, err := t.q.ListPendingInvitationsByAthlete(ctx, athleteID)
	if err != nil {
		return nil, translate(err, "list pending invitations")
	}
	invitations := make([]models.Invitation, len(rows))
	for i, row := range rows {
		invitations[i] = invitationFromDB(row)
	}
	return invitations, nil
}

func (t *txStore) CreateInvitation(ctx context.Context, inv models.Invitation) error {
	err := t.q.CreateInvitation(ctx, db.CreateInvitationParams{
		ID:        inv.ID,
		TeamID:    inv.TeamID,
		AthleteID: inv.AthleteID,
		InvitedBy: inv.InvitedBy,
		Status:    string(inv.Status),
		ExpiresAt: sqlutil.ToSqlTime(inv.ExpiresAt),
		CreatedAt: inv.CreatedAt,
	})
	return translate(err, "create invitation")
}

func (t *txStore) UpdateInvitationStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus, at time.Time) error {
	n, err := t.q.UpdateInvitationStatus(ctx, db.UpdateInvitationStatusParams{
		ID:          id,
		Status:      string(status),
		RespondedAt: at,
	})
	return affected(n, err, "update invitation status")
}

func (t *txStore) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	n, err := t.q.ExpireInvitations(ctx, now)
	if err != nil {
		return 0, translate(err, "expire invitations")
	}
	return n, nil
}
