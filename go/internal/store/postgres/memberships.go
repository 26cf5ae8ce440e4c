package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/db"
	"github.com/mcdev12/recruit/go/internal/models"
)

func (t *txStore) GetMembershipByAthlete(ctx context.Context, athleteID uuid.UUID) (*models.Membership, error) {
	row, err := t.q.GetMembershipByAthlete(ctx, athleteID)
	if err != nil {
		return nil, translate(err, "get membership by athlete")
	}
	m := membershipFromDB(row)
	return &m, nil
}

func (t *txStore) GetMembership(ctx context.Context, teamID, athleteID uuid.UUID) (*models.Membership, error) {
	row, err := t.q.GetMembership(ctx, db.PairParams{TeamID: teamID, AthleteID: athleteID})
	if err != nil {
		return nil, translate(err, "get membership")
	}
	m := membershipFromDB(row)
	return &m, nil
}

func (t *txStore) ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.Membership, error) {
	rows, err := t.q.ListMembers(ctx, teamID)
	if err != nil {
		return nil, translate(err, "list members")
	}
	members := make([]models.Membership, len(rows))
	for i, row := range rows {
		members[i] = membershipFromDB(row)
	}
	return members, nil
}

func (t *txStore) CreateMembership(ctx context.Context, m models.Membership) error {
	err := t.q.CreateMembership(ctx, db.CreateMembershipParams{
		TeamID:    m.TeamID,
		AthleteID: m.AthleteID,
		Role:      string(m.Role),
		IsCaptain: m.IsCaptain,
		JoinedAt:  m.JoinedAt,
	})
	return translate(err, "create membership")
}

func (t *txStore) UpdateMembershipRole(ctx context.Context, teamID, athleteID uuid.UUID, role models.Role) error {
	n, err := t.q.UpdateMembershipRole(ctx, db.UpdateMembershipRoleParams{
		TeamID:    teamID,
		AthleteID: athleteID,
		Role:      string(role),
		IsCaptain: role.CaptainFlag(),
	})
	return affected(n, err, "update membership role")
}

func (t *txStore) DeleteMembership(ctx context.Context, teamID, athleteID uuid.UUID) error {
	n, err := t.q.DeleteMembership(ctx, db.PairParams{TeamID: teamID, AthleteID: athleteID})
	return affected(n, err, "delete membership")
}
