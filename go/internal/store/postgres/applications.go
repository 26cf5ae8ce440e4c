package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/db"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/sqlutil"
	"github.com/mcdev12/recruit/go/internal/store"
)

func (t *txStore) GetApplication(ctx context.Context, id uuid.UUID) (*models.TeamApplication, error) {
	row, err := t.q.GetApplication(ctx, id)
	if err != nil {
		return nil, translate(err, "get application")
	}
	return applicationFromDB(row), nil
}

func (t *txStore) GetPendingApplication(ctx context.Context, applicantID uuid.UUID) (*models.TeamApplication, error) {
	row, err := t.q.GetPendingApplication(ctx, applicantID)
	if err != nil {
		return nil, translate(err, "get pending application")
	}
	return applicationFromDB(row), nil
}

func (t *txStore) CreateApplication(ctx context.Context, app models.TeamApplication) error {
	lat, lon := sqlutil.ToSqlCoordinates(app.Location)
	err := t.q.CreateApplication(ctx, db.CreateApplicationParams{
		ID:             app.ID,
		ApplicantID:    app.ApplicantID,
		GuideID:        app.GuideID,
		Name:           app.Name,
		Sport:          app.Sport,
		Classification: app.Classification,
		Latitude:       lat,
		Longitude:      lon,
		Status:         string(app.Status),
		CreatedAt:      app.CreatedAt,
	})
	return translate(err, "create application")
}

func (t *txStore) ReviewApplication(ctx context.Context, id uuid.UUID, review store.ApplicationReview) error {
	n, err := t.q.ReviewApplication(ctx, db.ReviewApplicationParams{
		ID:         id,
		Status:     string(review.Status),
		ReviewNote: sqlutil.ToSqlString(review.Note),
		TeamID:     sqlutil.ToNullUUID(review.TeamID),
		ReviewedAt: review.ReviewedAt,
	})
	return affected(n, err, "review application")
}
