package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/recruit/go/internal/models"
)

type RelayConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	BatchSize  int32         `yaml:"batch_size"`
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		MaxRetries: 5,
		RetryDelay: 200 * time.Millisecond,
		BatchSize:  100,
	}
}

// Relay moves claimed rows to the Publisher and keeps simple stats for the
// health check.
type Relay struct {
	store     Store
	publisher Publisher
	cfg       RelayConfig
	clock     clockwork.Clock
	metrics   *Metrics

	mu        sync.Mutex
	published uint64
	lastSent  time.Time
}

func NewRelay(store Store, publisher Publisher, cfg RelayConfig, clock clockwork.Clock, m *Metrics) *Relay {
	return &Relay{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		clock:     clock,
		metrics:   m,
	}
}

// HandleID publishes the notification id if it is still unsent. A row that
// another relay already holds is skipped.
func (r *Relay) HandleID(ctx context.Context, id uuid.UUID) error {
	ok, err := r.store.Claim(ctx, id, r.publishWithRetry)
	if err != nil {
		return fmt.Errorf("relay notification %s: %w", id, err)
	}
	if !ok {
		log.Debug().Str("notification_id", id.String()).Msg("notification already sent or claimed")
	}
	return nil
}

// DrainUnsent publishes one batch of the oldest unsent rows. Rows that fail
// stay unsent for the next sweep.
func (r *Relay) DrainUnsent(ctx context.Context) (int, error) {
	claimed, sent, err := r.store.ClaimBatch(ctx, r.cfg.BatchSize, r.publishWithRetry)
	if err != nil {
		return 0, fmt.Errorf("drain unsent notifications: %w", err)
	}
	r.metrics.recordBatch(claimed)
	if claimed > 0 {
		log.Info().Int("claimed", claimed).Int("sent", sent).Msg("drained unsent notifications")
	}
	return sent, nil
}

// Stats reports how many notifications this relay published and when it
// last did so.
func (r *Relay) Stats() (uint64, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.published, r.lastSent
}

// publishWithRetry backs off linearly: attempt n waits n*RetryDelay.
func (r *Relay) publishWithRetry(ctx context.Context, n models.Notification) error {
	start := r.clock.Now()
	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(r.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		err := r.publisher.Publish(ctx, n)
		r.metrics.recordAttempt(err)
		if err != nil {
			lastErr = err
			log.Error().
				Err(err).
				Int("attempt", attempt+1).
				Str("notification_id", n.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("notification_id", n.ID.String()).
				Msg("publish succeeded after retry")
		}
		r.metrics.recordPublish(string(n.Type), nil, r.clock.Since(start))
		r.mu.Lock()
		r.published++
		r.lastSent = r.clock.Now()
		r.mu.Unlock()
		return nil
	}

	err := fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
	r.metrics.recordPublish(string(n.Type), err, r.clock.Since(start))
	return err
}
