// Package notify writes notifications into the outbox table as part of a
// workflow's transaction. Delivery is handled by notify/outbox.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/models"
	"github.com/mcdev12/recruit/go/internal/store"
)

// Note is a request to notify one athlete.
type Note struct {
	Recipient uuid.UUID
	Actor     uuid.UUID
	Type      models.NotificationType
	Title     string
	Message   string
	Payload   any
}

// Emitter inserts notes best-effort: each insert runs in its own savepoint,
// and a failed insert is logged and counted but never fails the caller.
type Emitter struct {
	clock   clockwork.Clock
	metrics *metrics.Metrics
}

func NewEmitter(clock clockwork.Clock, m *metrics.Metrics) *Emitter {
	return &Emitter{clock: clock, metrics: m}
}

// Emit writes notes inside tx and returns how many were written.
func (e *Emitter) Emit(ctx context.Context, tx store.Tx, notes ...Note) int {
	written := 0
	for _, note := range notes {
		if err := e.emitOne(ctx, tx, note); err != nil {
			e.metrics.IncNotificationFailure(string(note.Type))
			log.Warn().
				Err(err).
				Str("type", string(note.Type)).
				Str("recipient_id", note.Recipient.String()).
				Msg("notification dropped")
			continue
		}
		e.metrics.IncNotificationEmitted(string(note.Type))
		written++
	}
	return written
}

func (e *Emitter) emitOne(ctx context.Context, tx store.Tx, note Note) error {
	var payload json.RawMessage
	if note.Payload != nil {
		b, err := json.Marshal(note.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		payload = b
	}

	n := models.Notification{
		ID:          uuid.New(),
		RecipientID: note.Recipient,
		ActorID:     note.Actor,
		Type:        note.Type,
		Title:       note.Title,
		Message:     note.Message,
		Payload:     payload,
		CreatedAt:   e.clock.Now().UTC(),
	}
	return tx.BestEffort(ctx, func(tx store.Tx) error {
		return tx.InsertNotification(ctx, n)
	})
}

// Leaders returns the athlete ids of the OWNER and CAPTAIN members, skipping exclude.
func Leaders(members []models.Membership, exclude ...uuid.UUID) []uuid.UUID {
	return pick(members, func(m models.Membership) bool { return m.Role.IsLeader() }, exclude)
}

// Everyone returns the athlete ids of all members, skipping exclude.
func Everyone(members []models.Membership, exclude ...uuid.UUID) []uuid.UUID {
	return pick(members, func(models.Membership) bool { return true }, exclude)
}

func pick(members []models.Membership, keep func(models.Membership) bool, exclude []uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
outer:
	for _, m := range members {
		if !keep(m) {
			continue
		}
		for _, x := range exclude {
			if m.AthleteID == x {
				continue outer
			}
		}
		ids = append(ids, m.AthleteID)
	}
	return ids
}

// Fanout builds one note per recipient from a template.
func Fanout(recipients []uuid.UUID, template Note) []Note {
	notes := make([]Note, 0, len(recipients))
	for _, r := range recipients {
		n := template
		n.Recipient = r
		notes = append(notes, n)
	}
	return notes
}
