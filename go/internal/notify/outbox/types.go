// Package outbox relays committed notifications from the notifications table
// to a message broker. It runs as its own binary (see cmd).
package outbox

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/recruit/go/internal/models"
)

// Publisher delivers one notification. Publish must be idempotent per
// notification id; a relay may publish the same row twice after a crash.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
	Close() error
}

// PublishFunc is what a Store calls for each row it has claimed.
type PublishFunc func(ctx context.Context, n models.Notification) error

// Store claims unsent notifications. A claimed row stays locked until publish
// returns, and is marked sent only when publish succeeds.
type Store interface {
	// Claim handles the single row id. ok is false when the row is already
	// sent or held by another relay.
	Claim(ctx context.Context, id uuid.UUID, publish PublishFunc) (ok bool, err error)
	// ClaimBatch handles up to limit of the oldest unsent rows.
	ClaimBatch(ctx context.Context, limit int32, publish PublishFunc) (claimed, sent int, err error)
	CountUnsent(ctx context.Context) (int64, error)
}
