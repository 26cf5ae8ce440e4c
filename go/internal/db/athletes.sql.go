package db

import (
	"context"

	"github.com/google/uuid"
)

const athleteColumns = `id, username, first_name, last_name, primary_sport, secondary_sport, rank, classification, latitude, longitude, created_at`

const getAthlete = `-- name: GetAthlete :one
SELECT ` + athleteColumns + `
FROM athletes
WHERE id = $1
`

func (q *Queries) GetAthlete(ctx context.Context, id uuid.UUID) (Athlete, error) {
	row := q.db.QueryRowContext(ctx, getAthlete, id)
	return scanAthlete(row)
}

const searchFreeAgents = `-- name: SearchFreeAgents :many
SELECT a.id, a.username, a.first_name, a.last_name, a.primary_sport, a.secondary_sport,
       a.rank, a.classification, a.latitude, a.longitude, a.created_at
FROM athletes a
WHERE a.latitude BETWEEN $1 AND $2
  AND a.longitude BETWEEN $3 AND $4
  AND NOT EXISTS (SELECT 1 FROM memberships m WHERE m.athlete_id = a.id)
  AND (
        ($5 = '' AND $6 = '')
     OR ($5 <> ''
         AND (a.primary_sport = $5 OR a.secondary_sport = $5)
         AND ($8::bool OR $6 = ''
              OR a.username ILIKE $7 OR a.first_name ILIKE $7 OR a.last_name ILIKE $7))
     OR ($6 <> ''
         AND (a.username ILIKE $7 OR a.first_name ILIKE $7 OR a.last_name ILIKE $7)
         AND ($8::bool OR $5 = ''))
  )
ORDER BY (a.primary_sport = $5 OR COALESCE(a.secondary_sport = $5, false)) DESC,
         a.rank DESC,
         a.id
LIMIT $9
`

type SearchFreeAgentsParams struct {
	MinLatitude  float64 `json:"min_latitude"`
	MaxLatitude  float64 `json:"max_latitude"`
	MinLongitude float64 `json:"min_longitude"`
	MaxLongitude float64 `json:"max_longitude"`
	Sport        string  `json:"sport"`
	Search       string  `json:"search"`
	// SearchPattern is Search escaped for ILIKE and wrapped in %.
	SearchPattern string `json:"search_pattern"`
	SearchWidens  bool   `json:"search_widens"`
	Limit         int32  `json:"limit"`
}

func (q *Queries) SearchFreeAgents(ctx context.Context, arg SearchFreeAgentsParams) ([]Athlete, error) {
	rows, err := q.db.QueryContext(ctx, searchFreeAgents,
		arg.MinLatitude,
		arg.MaxLatitude,
		arg.MinLongitude,
		arg.MaxLongitude,
		arg.Sport,
		arg.Search,
		arg.SearchPattern,
		arg.SearchWidens,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Athlete
	for rows.Next() {
		i, err := scanAthlete(rows)
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

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAthlete(s scanner) (Athlete, error) {
	var i Athlete
	err := s.Scan(
		&i.ID,
		&i.Username,
		&i.FirstName,
		&i.LastName,
		&i.PrimarySport,
		&i.SecondarySport,
		&i.Rank,
		&i.Classification,
		&i.Latitude,
		&i.Longitude,
		&i.CreatedAt,
	)
	return i, err
}
