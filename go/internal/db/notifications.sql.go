package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const notificationColumns = `id, recipient_id, actor_id, type, title, message, payload, created_at, sent_at`

const insertNotification = `-- name: InsertNotification :exec
INSERT INTO notifications (id, recipient_id, actor_id, type, title, message, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type InsertNotificationParams struct {
	ID          uuid.UUID             `json:"id"`
	RecipientID uuid.UUID             `json:"recipient_id"`
	ActorID     uuid.UUID             `json:"actor_id"`
	Type        string                `json:"type"`
	Title       string                `json:"title"`
	Message     string                `json:"message"`
	Payload     pqtype.NullRawMessage `json:"payload"`
	CreatedAt   time.Time             `json:"created_at"`
}

func (q *Queries) InsertNotification(ctx context.Context, arg InsertNotificationParams) error {
	_, err := q.db.ExecContext(ctx, insertNotification,
		arg.ID,
		arg.RecipientID,
		arg.ActorID,
		arg.Type,
		arg.Title,
		arg.Message,
		arg.Payload,
		arg.CreatedAt,
	)
	return err
}

const fetchUnsentNotificationByID = `-- name: FetchUnsentNotificationByID :one
SELECT ` + notificationColumns + `
FROM notifications
WHERE id = $1 AND sent_at IS NULL
FOR UPDATE SKIP LOCKED
`

func (q *Queries) FetchUnsentNotificationByID(ctx context.Context, id uuid.UUID) (Notification, error) {
	row := q.db.QueryRowContext(ctx, fetchUnsentNotificationByID, id)
	return scanNotification(row)
}

const fetchUnsentNotifications = `-- name: FetchUnsentNotifications :many
SELECT ` + notificationColumns + `
FROM notifications
WHERE sent_at IS NULL
ORDER BY created_at
LIMIT $1
FOR UPDATE SKIP LOCKED
`

func (q *Queries) FetchUnsentNotifications(ctx context.Context, limit int32) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, fetchUnsentNotifications, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Notification
	for rows.Next() {
		i, err := scanNotification(rows)
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

const countUnsentNotifications = `-- name: CountUnsentNotifications :one
SELECT count(*) FROM notifications WHERE sent_at IS NULL
`

func (q *Queries) CountUnsentNotifications(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUnsentNotifications)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const markNotificationSent = `-- name: MarkNotificationSent :exec
UPDATE notifications
SET sent_at = $2
WHERE id = $1
`

func (q *Queries) MarkNotificationSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	_, err := q.db.ExecContext(ctx, markNotificationSent, id, sentAt)
	return err
}

func scanNotification(s scanner) (Notification, error) {
	var i Notification
	err := s.Scan(
		&i.ID,
		&i.RecipientID,
		&i.ActorID,
		&i.Type,
		&i.Title,
		&i.Message,
		&i.Payload,
		&i.CreatedAt,
		&i.SentAt,
	)
	return i, err
}
