// Package postgres implements store.Store on database/sql with lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/db"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/sqlutil"
	"github.com/mcdev12/recruit/go/internal/store"
)

// Store is the Postgres-backed store.
type Store struct {
	db      *sql.DB
	queries *db.Queries
}

var _ store.Store = (*Store)(nil)

// New creates a Store over an open connection pool.
func New(database *sql.DB) *Store {
	return &Store{
		db:      database,
		queries: db.New(database),
	}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, db.Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// RunInTx runs fn in one database transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sqlutil.Run(ctx, s.db,
		func(tx *sql.Tx) *txStore {
			return &txStore{tx: tx, q: s.queries.WithTx(tx)}
		},
		func(t *txStore) error {
			return fn(t)
		},
	)
}

// SearchFreeAgents runs the discovery pre-filter against the pool.
func (s *Store) SearchFreeAgents(ctx context.Context, filter models.CandidateFilter) ([]models.Athlete, error) {
	rows, err := s.queries.SearchFreeAgents(ctx, db.SearchFreeAgentsParams{
		MinLatitude:   filter.Box.MinLatitude,
		MaxLatitude:   filter.Box.MaxLatitude,
		MinLongitude:  filter.Box.MinLongitude,
		MaxLongitude:  filter.Box.MaxLongitude,
		Sport:         filter.Sport,
		Search:        filter.Search,
		SearchPattern: sqlutil.ContainsPattern(filter.Search),
		SearchWidens:  filter.SearchWidens,
		Limit:         int32(filter.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search free agents: %w", err)
	}

	athletes := make([]models.Athlete, len(rows))
	for i, row := range rows {
		athletes[i] = athleteFromDB(row)
	}
	return athletes, nil
}

// txStore is the store.Tx bound to one *sql.Tx.
type txStore struct {
	tx *sql.Tx
	q  *db.Queries
}

var _ store.Tx = (*txStore)(nil)

func (t *txStore) LockPair(ctx context.Context, teamID, athleteID uuid.UUID) error {
	if err := t.q.AcquirePairLock(ctx, teamID.String()+":"+athleteID.String()); err != nil {
		return fmt.Errorf("lock pair: %w", err)
	}
	return nil
}

func (t *txStore) BestEffort(ctx context.Context, fn func(tx store.Tx) error) error {
	return sqlutil.Savepoint(ctx, t.tx, func() error {
		return fn(t)
	})
}

// translate maps driver errors onto the store sentinels.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	case sqlutil.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, store.ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// affected treats an update or delete that touched nothing as not found.
func affected(n int64, err error, op string) error {
	if err != nil {
		return translate(err, op)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}
