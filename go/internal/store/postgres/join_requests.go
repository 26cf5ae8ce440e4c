package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/db"
	"github.com/mcdev12/recruit/go/internal/models"
)

func (t *txStore) GetJoinRequest(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error) {
	row, err := t.q.GetJoinRequest(ctx, id)
	if err != nil {
		return nil, translate(err, "get join request")
	}
	r := joinRequestFromDB(row)
	return &r, nil
}

func (t *txStore) GetPendingJoinRequest(ctx context.Context, teamID, athleteID uuid.UUID) (*models.JoinRequest, error) {
	row, err := t.q.GetPendingJoinRequest(ctx, db.PairParams{TeamID: teamID, AthleteID: athleteID})
	if err != nil {
		return nil, translate(err, "get pending join request")
	}
	r := joinRequestFromDB(row)
	return &r, nil
}

func (t *txStore) ListPendingJoinRequests(ctx context.Context, teamID uuid.UUID) ([]models.JoinRequest, error) {
	rows, err := t.q.ListPendingJoinRequests(ctx, teamID)
	if err != nil {
		return nil, translate(err, "list pending join requests")
	}
	requests := make([]models.JoinRequest, len(rows))
	for i, row := range rows {
		requests[i] = joinRequestFromDB(row)
	}
	return requests, nil
}

func (t *txStore) CreateJoinRequest(ctx context.Context, req models.JoinRequest) error {
	err := t.q.CreateJoinRequest(ctx, db.CreateJoinRequestParams{
		ID:        req.ID,
		TeamID:    req.TeamID,
		AthleteID: req.AthleteID,
		Message:   req.Message,
		Status:    string(req.Status),
		CreatedAt: req.CreatedAt,
	})
	return translate(err, "create join request")
}

func (t *txStore) ReviewJoinRequest(ctx context.Context, id uuid.UUID, status models.JoinRequestStatus, reviewerID uuid.UUID, at time.Time) error {
	n, err := t.q.ReviewJoinRequest(ctx, db.ReviewJoinRequestParams{
		ID:         id,
		Status:     string(status),
		ReviewedBy: reviewerID,
		ReviewedAt: at,
	})
	return affected(n, err, "review join request")
}

func (t *txStore) DeleteJoinRequest(ctx context.Context, id uuid.UUID) error {
	n, err := t.q.DeleteJoinRequest(ctx, id)
	return affected(n, err, "delete join request")
}
