package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/models"
)

func (t *txStore) GetAthlete(ctx context.Context, id uuid.UUID) (*models.Athlete, error) {
	row, err := t.q.GetAthlete(ctx, id)
	if err != nil {
		return nil, translate(err, "get athlete")
	}
	a := athleteFromDB(row)
	return &a, nil
}
