package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const teamColumns = `id, name, sport, classification, latitude, longitude, owner_id, status, created_at, updated_at`

const getTeam = `-- name: GetTeam :one
SELECT ` + teamColumns + `
FROM teams
WHERE id = $1
`

func (q *Queries) GetTeam(ctx context.Context, id uuid.UUID) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	return scanTeam(row)
}

const getTeamForUpdate = `-- name: GetTeamForUpdate :one
SELECT ` + teamColumns + `
FROM teams
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetTeamForUpdate(ctx context.Context, id uuid.UUID) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeamForUpdate, id)
	return scanTeam(row)
}

const getTeamByOwner = `-- name: GetTeamByOwner :one
SELECT ` + teamColumns + `
FROM teams
WHERE owner_id = $1
`

func (q *Queries) GetTeamByOwner(ctx context.Context, ownerID uuid.UUID) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeamByOwner, ownerID)
	return scanTeam(row)
}

const createTeam = `-- name: CreateTeam :exec
INSERT INTO teams (
    id, name, sport, classification, latitude, longitude, owner_id, status, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $9
)
`

type CreateTeamParams struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Sport          string          `json:"sport"`
	Classification string          `json:"classification"`
	Latitude       sql.NullFloat64 `json:"latitude"`
	Longitude      sql.NullFloat64 `json:"longitude"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) error {
	_, err := q.db.ExecContext(ctx, createTeam,
		arg.ID,
		arg.Name,
		arg.Sport,
		arg.Classification,
		arg.Latitude,
		arg.Longitude,
		arg.OwnerID,
		arg.Status,
		arg.CreatedAt,
	)
	return err
}

const createTeamStats = `-- name: CreateTeamStats :exec
INSERT INTO team_stats (team_id, matches_played, wins, losses, draws)
VALUES ($1, $2, $3, $4, $5)
`

func (q *Queries) CreateTeamStats(ctx context.Context, arg TeamStat) error {
	_, err := q.db.ExecContext(ctx, createTeamStats,
		arg.TeamID,
		arg.MatchesPlayed,
		arg.Wins,
		arg.Losses,
		arg.Draws,
	)
	return err
}

const setTeamOwner = `-- name: SetTeamOwner :execrows
UPDATE teams
SET owner_id = $2, updated_at = $3
WHERE id = $1
`

type SetTeamOwnerParams struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) SetTeamOwner(ctx context.Context, arg SetTeamOwnerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setTeamOwner, arg.ID, arg.OwnerID, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const acquirePairLock = `-- name: AcquirePairLock :exec
SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))
`

// AcquirePairLock takes a transaction-scoped advisory lock keyed by key.
func (q *Queries) AcquirePairLock(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, acquirePairLock, key)
	return err
}

func scanTeam(s scanner) (Team, error) {
	var i Team
	err := s.Scan(
		&i.ID,
		&i.Name,
		&i.Sport,
		&i.Classification,
		&i.Latitude,
		&i.Longitude,
		&i.OwnerID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
