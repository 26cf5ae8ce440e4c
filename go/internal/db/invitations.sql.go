package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const invitationColumns = `id, team_id, athlete_id, invited_by, status, expires_at, created_at, responded_at`

const getInvitation = `-- name: GetInvitation :one
SELECT ` + invitationColumns + `
FROM invitations
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetInvitation(ctx context.Context, id uuid.UUID) (Invitation, error) {
	row := q.db.QueryRowContext(ctx, getInvitation, id)
	return scanInvitation(row)
}

const getPendingInvitation = `-- name: GetPendingInvitation :one
SELECT ` + invitationColumns + `
FROM invitations
WHERE team_id = $1 AND athlete_id = $2 AND status = 'PENDING'
`

type PairParams struct {
	TeamID    uuid.UUID `json:"team_id"`
	AthleteID uuid.UUID `json:"athlete_id"`
}

func (q *Queries) GetPendingInvitation(ctx context.Context, arg PairParams) (Invitation, error) {
	row := q.db.QueryRowContext(ctx, getPendingInvitation, arg.TeamID, arg.AthleteID)
	return scanInvitation(row)
}

const listPendingInvitationsByAthlete = `-- name: ListPendingInvitationsByAthlete :many
SELECT ` + invitationColumns + `
FROM invitations
WHERE athlete_id = $1 AND status = 'PENDING'
ORDER BY created_at DESC
`

func (q *Queries) ListPendingInvitationsByAthlete(ctx context.Context, athleteID uuid.UUID) ([]Invitation, error) {
	rows, err := q.db.QueryContext(ctx, listPendingInvitationsByAthlete, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Invitation
	for rows.Next() {
		i, err := scanInvitation(rows)
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

const createInvitation = `-- name: CreateInvitation :exec
INSERT INTO invitations (id, team_id, athlete_id, invited_by, status, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateInvitationParams struct {
	ID        uuid.UUID    `json:"id"`
	TeamID    uuid.UUID    `json:"team_id"`
	AthleteID uuid.UUID    `json:"athlete_id"`
	InvitedBy uuid.UUID    `json:"invited_by"`
	Status    string       `json:"status"`
	ExpiresAt sql.NullTime `json:"expires_at"`
	CreatedAt time.Time    `json:"created_at"`
}

func (q *Queries) CreateInvitation(ctx context.Context, arg CreateInvitationParams) error {
	_, err := q.db.ExecContext(ctx, createInvitation,
		arg.ID,
		arg.TeamID,
		arg.AthleteID,
		arg.InvitedBy,
		arg.Status,
		arg.ExpiresAt,
		arg.CreatedAt,
	)
	return err
}

const updateInvitationStatus = `-- name: UpdateInvitationStatus :execrows
UPDATE invitations
SET status = $2, responded_at = $3
WHERE id = $1 AND status = 'PENDING'
`

type UpdateInvitationStatusParams struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status"`
	RespondedAt time.Time `json:"responded_at"`
}

func (q *Queries) UpdateInvitationStatus(ctx context.Context, arg UpdateInvitationStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateInvitationStatus, arg.ID, arg.Status, arg.RespondedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const expireInvitations = `-- name: ExpireInvitations :execrows
UPDATE invitations
SET status = 'EXPIRED', responded_at = $1
WHERE status = 'PENDING' AND expires_at IS NOT NULL AND expires_at <= $1
`

func (q *Queries) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, expireInvitations, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanInvitation(s scanner) (Invitation, error) {
	var i Invitation
	err := s.Scan(
		&i.ID,
		&i.TeamID,
		&i.AthleteID,
		&i.InvitedBy,
		&i.Status,
		&i.ExpiresAt,
		&i.CreatedAt,
		&i.RespondedAt,
	)
	return i, err
}
