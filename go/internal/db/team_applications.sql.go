package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const applicationColumns = `id, applicant_id, guide_id, name, sport, classification, latitude, longitude, status, review_note, team_id, created_at, reviewed_at`

const getApplication = `-- name: GetApplication :one
SELECT ` + applicationColumns + `
FROM team_applications
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetApplication(ctx context.Context, id uuid.UUID) (TeamApplication, error) {
	row := q.db.QueryRowContext(ctx, getApplication, id)
	return scanApplication(row)
}

const getPendingApplication = `-- name: GetPendingApplication :one
SELECT ` + applicationColumns + `
FROM team_applications
WHERE applicant_id = $1 AND status = 'PENDING'
`

func (q *Queries) GetPendingApplication(ctx context.Context, applicantID uuid.UUID) (TeamApplication, error) {
	row := q.db.QueryRowContext(ctx, getPendingApplication, applicantID)
	return scanApplication(row)
}

const createApplication = `-- name: CreateApplication :exec
INSERT INTO team_applications (
    id, applicant_id, guide_id, name, sport, classification, latitude, longitude, status, created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
`

type CreateApplicationParams struct {
	ID             uuid.UUID       `json:"id"`
	ApplicantID    uuid.UUID       `json:"applicant_id"`
	GuideID        uuid.UUID       `json:"guide_id"`
	Name           string          `json:"name"`
	Sport          string          `json:"sport"`
	Classification string          `json:"classification"`
	Latitude       sql.NullFloat64 `json:"latitude"`
	Longitude      sql.NullFloat64 `json:"longitude"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) error {
	_, err := q.db.ExecContext(ctx, createApplication,
		arg.ID,
		arg.ApplicantID,
		arg.GuideID,
		arg.Name,
		arg.Sport,
		arg.Classification,
		arg.Latitude,
		arg.Longitude,
		arg.Status,
		arg.CreatedAt,
	)
	return err
}

const reviewApplication = `-- name: ReviewApplication :execrows
UPDATE team_applications
SET status = $2, review_note = $3, team_id = $4, reviewed_at = $5
WHERE id = $1 AND status = 'PENDING'
`

type ReviewApplicationParams struct {
	ID         uuid.UUID      `json:"id"`
	Status     string         `json:"status"`
	ReviewNote sql.NullString `json:"review_note"`
	TeamID     uuid.NullUUID  `json:"team_id"`
	ReviewedAt time.Time      `json:"reviewed_at"`
}

func (q *Queries) ReviewApplication(ctx context.Context, arg ReviewApplicationParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, reviewApplication,
		arg.ID,
		arg.Status,
		arg.ReviewNote,
		arg.TeamID,
		arg.ReviewedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanApplication(s scanner) (TeamApplication, error) {
	var i TeamApplication
	err := s.Scan(
		&i.ID,
		&i.ApplicantID,
		&i.GuideID,
		&i.Name,
		&i.Sport,
		&i.Classification,
		&i.Latitude,
		&i.Longitude,
		&i.Status,
		&i.ReviewNote,
		&i.TeamID,
		&i.CreatedAt,
		&i.ReviewedAt,
	)
	return i, err
}
