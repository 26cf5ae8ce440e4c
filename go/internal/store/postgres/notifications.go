package postgres

import (
	"context"

	"github.com/mcdev12/recruit/go/internal/db"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/sqlc-dev/pqtype"
)

func (t *txStore) InsertNotification(ctx context.Context, n models.Notification) error {
	err := t.q.InsertNotification(ctx, db.InsertNotificationParams{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		ActorID:     n.ActorID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Payload:     pqtype.NullRawMessage{RawMessage: n.Payload, Valid: len(n.Payload) > 0},
		CreatedAt:   n.CreatedAt,
	})
	return translate(err, "insert notification")
}
