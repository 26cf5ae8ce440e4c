package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const membershipColumns = `team_id, athlete_id, role, is_captain, joined_at`

const getMembershipByAthlete = `-- name: GetMembershipByAthlete :one
SELECT ` + membershipColumns + `
FROM memberships
WHERE athlete_id = $1
`

func (q *Queries) GetMembershipByAthlete(ctx context.Context, athleteID uuid.UUID) (Membership, error) {
	row := q.db.QueryRowContext(ctx, getMembershipByAthlete, athleteID)
	return scanMembership(row)
}

const getMembership = `-- name: GetMembership :one
SELECT ` + membershipColumns + `
FROM memberships
WHERE team_id = $1 AND athlete_id = $2
`

func (q *Queries) GetMembership(ctx context.Context, arg PairParams) (Membership, error) {
	row := q.db.QueryRowContext(ctx, getMembership, arg.TeamID, arg.AthleteID)
	return scanMembership(row)
}

const listMembers = `-- name: ListMembers :many
SELECT ` + membershipColumns + `
FROM memberships
WHERE team_id = $1
ORDER BY CASE role WHEN 'OWNER' THEN 0 WHEN 'CAPTAIN' THEN 1 WHEN 'MANAGER' THEN 2 ELSE 3 END,
         joined_at,
         athlete_id
`

func (q *Queries) ListMembers(ctx context.Context, teamID uuid.UUID) ([]Membership, error) {
	rows, err := q.db.QueryContext(ctx, listMembers, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Membership
	for rows.Next() {
		i, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createMembership = `-- name: CreateMembership :exec
INSERT INTO memberships (team_id, athlete_id, role, is_captain, joined_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreateMembershipParams struct {
	TeamID    uuid.UUID `json:"team_id"`
	AthleteID uuid.UUID `json:"athlete_id"`
	Role      string    `json:"role"`
	IsCaptain bool      `json:"is_captain"`
	JoinedAt  time.Time `json:"joined_at"`
}

func (q *Queries) CreateMembership(ctx context.Context, arg CreateMembershipParams) error {
	_, err := q.db.ExecContext(ctx, createMembership,
		arg.TeamID,
		arg.AthleteID,
		arg.Role,
		arg.IsCaptain,
		arg.JoinedAt,
	)
	return err
}

const updateMembershipRole = `-- name: UpdateMembershipRole :execrows
UPDATE memberships
SET role = $3, is_captain = $4
WHERE team_id = $1 AND athlete_id = $2
`

type UpdateMembershipRoleParams struct {
	TeamID    uuid.UUID `json:"team_id"`
	AthleteID uuid.UUID `json:"athlete_id"`
	Role      string    `json:"role"`
	IsCaptain bool      `json:"is_captain"`
}

func (q *Queries) UpdateMembershipRole(ctx context.Context, arg UpdateMembershipRoleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateMembershipRole,
		arg.TeamID,
		arg.AthleteID,
		arg.Role,
		arg.IsCaptain,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteMembership = `-- name: DeleteMembership :execrows
DELETE FROM memberships
WHERE team_id = $1 AND athlete_id = $2
`

func (q *Queries) DeleteMembership(ctx context.Context, arg PairParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteMembership, arg.TeamID, arg.AthleteID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanMembership(s scanner) (Membership, error) {
	var i Membership
	err := s.Scan(
		&i.TeamID,
		&i.AthleteID,
		&i.Role,
		&i.IsCaptain,
		&i.JoinedAt,
	)
	return i, err
}
