package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/db"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/sqlutil"
)

func (t *txStore) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row, err := t.q.GetTeam(ctx, id)
	if err != nil {
		return nil, translate(err, "get team")
	}
	return teamFromDB(row), nil
}

func (t *txStore) LockTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row, err := t.q.GetTeamForUpdate(ctx, id)
	if err != nil {
		return nil, translate(err, "lock team")
	}
	return teamFromDB(row), nil
}

func (t *txStore) GetTeamByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Team, error) {
	row, err := t.q.GetTeamByOwner(ctx, ownerID)
	if err != nil {
		return nil, translate(err, "get team by owner")
	}
	return teamFromDB(row), nil
}

func (t *txStore) CreateTeam(ctx context.Context, team models.Team) error {
	lat, lon := sqlutil.ToSqlCoordinates(team.Location)
	err := t.q.CreateTeam(ctx, db.CreateTeamParams{
		ID:             team.ID,
		Name:           team.Name,
		Sport:          team.Sport,
		Classification: team.Classification,
		Latitude:       lat,
		Longitude:      lon,
		OwnerID:        team.OwnerID,
		Status:         string(team.Status),
		CreatedAt:      team.CreatedAt,
	})
	return translate(err, "create team")
}

func (t *txStore) CreateTeamStats(ctx context.Context, stats models.TeamStats) error {
	err := t.q.CreateTeamStats(ctx, db.TeamStat{
		TeamID:        stats.TeamID,
		MatchesPlayed: int32(stats.MatchesPlayed),
		Wins:          int32(stats.Wins),
		Losses:        int32(stats.Losses),
		Draws:         int32(stats.Draws),
	})
	return translate(err, "create team stats")
}

func (t *txStore) SetTeamOwner(ctx context.Context, teamID, ownerID uuid.UUID, at time.Time) error {
	n, err := t.q.SetTeamOwner(ctx, db.SetTeamOwnerParams{ID: teamID, OwnerID: ownerID, UpdatedAt: at})
	return affected(n, err, "set team owner")
}
