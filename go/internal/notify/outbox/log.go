package outbox

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mcdev12/recruit/go/internal/models"
)

// LogPublisher writes notifications to a logger. It is the local
// development publisher and never fails.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, n models.Notification) error {
	p.logger.Info().
		Str("notification_id", n.ID.String()).
		Str("type", string(n.Type)).
		Str("recipient_id", n.RecipientID.String()).
		Str("title", n.Title).
		Msg(n.Message)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
