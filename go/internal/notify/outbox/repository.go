package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/recruit/go/internal/db"
	"github.com/mcdev12/recruit/go/internal/sqlutil"
	"github.com/mcdev12/recruit/go/internal/store/postgres"
)

// Repository is the Postgres Store. Rows are claimed with FOR UPDATE SKIP
// LOCKED so several relays can run side by side.
type Repository struct {
	db      *sql.DB
	queries *db.Queries
	clock   clockwork.Clock
}

func NewRepository(conn *sql.DB, clock clockwork.Clock) *Repository {
	return &Repository{
		db:      conn,
		queries: db.New(conn),
		clock:   clock,
	}
}

var _ Store = (*Repository)(nil)

func (r *Repository) Claim(ctx context.Context, id uuid.UUID, publish PublishFunc) (bool, error) {
	ok := false
	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		row, err := q.FetchUnsentNotificationByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch notification %s: %w", id, err)
		}
		ok = true
		if err := publish(ctx, postgres.NotificationFromDB(row)); err != nil {
			return err
		}
		if err := q.MarkNotificationSent(ctx, row.ID, r.clock.Now().UTC()); err != nil {
			return fmt.Errorf("mark notification %s sent: %w", id, err)
		}
		return nil
	})
	return ok, err
}

func (r *Repository) ClaimBatch(ctx context.Context, limit int32, publish PublishFunc) (int, int, error) {
	claimed, sent := 0, 0
	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		rows, err := q.FetchUnsentNotifications(ctx, limit)
		if err != nil {
			return fmt.Errorf("fetch unsent notifications: %w", err)
		}
		claimed = len(rows)
		for _, row := range rows {
			if err := publish(ctx, postgres.NotificationFromDB(row)); err != nil {
				// left unsent for the next pass
				continue
			}
			if err := q.MarkNotificationSent(ctx, row.ID, r.clock.Now().UTC()); err != nil {
				return fmt.Errorf("mark notification %s sent: %w", row.ID, err)
			}
			sent++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return claimed, sent, nil
}

func (r *Repository) CountUnsent(ctx context.Context) (int64, error) {
	return r.queries.CountUnsentNotifications(ctx)
}
