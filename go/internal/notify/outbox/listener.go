package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Channel is the LISTEN channel the notifications insert trigger signals.
const Channel = "notification_outbox"

type ListenerConfig struct {
	DatabaseURL      string        `yaml:"-"`
	FallbackInterval time.Duration `yaml:"fallback_interval"`
	PingInterval     time.Duration `yaml:"ping_interval"`
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		FallbackInterval: 30 * time.Second,
		PingInterval:     90 * time.Second,
	}
}

// Listener wakes the Relay on every NOTIFY and sweeps for missed rows on a
// timer, since NOTIFY is lost while the connection is down.
type Listener struct {
	relay    *Relay
	listener *pq.Listener
	cfg      ListenerConfig

	active chan struct{}
}

func NewListener(relay *Relay, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(Channel); err != nil {
		return nil, fmt.Errorf("listen on %s: %w", Channel, err)
	}

	log.Info().Str("channel", Channel).Msg("listening for notifications")

	return &Listener{
		relay:    relay,
		listener: l,
		cfg:      cfg,
		active:   make(chan struct{}),
	}, nil
}

// Start blocks until ctx is done. Rows committed before start are picked
// up by an initial sweep.
func (l *Listener) Start(ctx context.Context) error {
	log.Info().
		Str("channel", Channel).
		Dur("ping_interval", l.cfg.PingInterval).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("listener started")
	close(l.active)

	if _, err := l.relay.DrainUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("initial sweep failed")
	}

	pingTicker := time.NewTicker(l.cfg.PingInterval)
	fallbackTicker := time.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("listener shutting down")
			return l.listener.Close()
		case note := <-l.listener.Notify:
			if note == nil {
				// reconnected; anything sent meanwhile is lost, so sweep
				if _, err := l.relay.DrainUnsent(ctx); err != nil {
					log.Error().Err(err).Msg("sweep after reconnect failed")
				}
				continue
			}
			id, err := uuid.Parse(note.Extra)
			if err != nil {
				log.Error().Err(err).Str("payload", note.Extra).Msg("invalid notification id")
				continue
			}
			if err := l.relay.HandleID(ctx, id); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.C:
			if _, err := l.relay.DrainUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent notifications")
			}
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

// Active reports whether Start has been called.
func (l *Listener) Active() bool {
	select {
	case <-l.active:
		return true
	default:
		return false
	}
}
