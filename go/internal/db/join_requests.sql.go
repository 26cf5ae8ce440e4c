package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const joinRequestColumns = `id, team_id, athlete_id, message, status, reviewed_by, created_at, reviewed_at`

const getJoinRequest = `-- name: GetJoinRequest :one
SELECT ` + joinRequestColumns + `
FROM join_requests
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetJoinRequest(ctx context.Context, id uuid.UUID) (JoinRequest, error) {
	row := q.db.QueryRowContext(ctx, getJoinRequest, id)
	return scanJoinRequest(row)
}

const getPendingJoinRequest = `-- name: GetPendingJoinRequest :one
SELECT ` + joinRequestColumns + `
FROM join_requests
WHERE team_id = $1 AND athlete_id = $2 AND status = 'PENDING'
`

func (q *Queries) GetPendingJoinRequest(ctx context.Context, arg PairParams) (JoinRequest, error) {
	row := q.db.QueryRowContext(ctx, getPendingJoinRequest, arg.TeamID, arg.AthleteID)
	return scanJoinRequest(row)
}

const listPendingJoinRequests = `-- name: ListPendingJoinRequests :many
SELECT ` + joinRequestColumns + `
FROM join_requests
WHERE team_id = $1 AND status = 'PENDING'
ORDER BY created_at
`

func (q *Queries) ListPendingJoinRequests(ctx context.Context, teamID uuid.UUID) ([]JoinRequest, error) {
	rows, err := q.db.QueryContext(ctx, listPendingJoinRequests, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []JoinRequest
	for rows.Next() {
		i, err := scanJoinRequest(rows)
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

const createJoinRequest = `-- name: CreateJoinRequest :exec
INSERT INTO join_requests (id, team_id, athlete_id, message, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

type CreateJoinRequestParams struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	AthleteID uuid.UUID `json:"athlete_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateJoinRequest(ctx context.Context, arg CreateJoinRequestParams) error {
	_, err := q.db.ExecContext(ctx, createJoinRequest,
		arg.ID,
		arg.TeamID,
		arg.AthleteID,
		arg.Message,
		arg.Status,
		arg.CreatedAt,
	)
	return err
}

const reviewJoinRequest = `-- name: ReviewJoinRequest :execrows
UPDATE join_requests
SET status = $2, reviewed_by = $3, reviewed_at = $4
WHERE id = $1 AND status = 'PENDING'
`

type ReviewJoinRequestParams struct {
	ID         uuid.UUID `json:"id"`
	Status     string    `json:"status"`
	ReviewedBy uuid.UUID `json:"reviewed_by"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

func (q *Queries) ReviewJoinRequest(ctx context.Context, arg ReviewJoinRequestParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, reviewJoinRequest,
		arg.ID,
		arg.Status,
		arg.ReviewedBy,
		arg.ReviewedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteJoinRequest = `-- name: DeleteJoinRequest :execrows
DELETE FROM join_requests
WHERE id = $1
`

func (q *Queries) DeleteJoinRequest(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteJoinRequest, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanJoinRequest(s scanner) (JoinRequest, error) {
	var i JoinRequest
	err := s.Scan(
		&i.ID,
		&i.TeamID,
		&i.AthleteID,
		&i.Message,
		&i.Status,
		&i.ReviewedBy,
		&i.CreatedAt,
		&i.ReviewedAt,
	)
	return i, err
}
