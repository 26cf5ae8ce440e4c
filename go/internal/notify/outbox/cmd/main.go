package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/recruit/go/internal/config"
	"github.com/mcdev12/recruit/go/internal/notify/outbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	config.SetupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := cfg.DB.Open(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	log.Info().
		Str("host", cfg.DB.Host).
		Int("port", cfg.DB.Port).
		Str("database", cfg.DB.Database).
		Msg("connected to database")

	publisher, brokerCheck, err := newPublisher(ctx, cfg.Outbox)
	if err != nil {
		log.Fatal().Err(err).Str("publisher", cfg.Outbox.Publisher).Msg("create publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("close publisher")
		}
	}()

	clock := clockwork.NewRealClock()
	m := outbox.NewMetrics(prometheus.DefaultRegisterer)
	repo := outbox.NewRepository(db, clock)
	relay := outbox.NewRelay(repo, publisher, cfg.Outbox.Relay, clock, m)

	listener, err := outbox.NewListener(relay, cfg.Outbox.Listener)
	if err != nil {
		log.Fatal().Err(err).Msg("create outbox listener")
	}

	mux := http.NewServeMux()
	mux.Handle("/health", outbox.NewHealthChecker(relay, listener, db, repo, brokerCheck, m, cfg.Outbox.StaleThreshold))
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: ":" + cfg.Outbox.HealthPort, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listener.Start(gctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	log.Info().Str("publisher", cfg.Outbox.Publisher).Msg("outbox relay running")
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("outbox relay stopped")
		return
	}
	log.Info().Msg("outbox relay stopped")
}

func newPublisher(ctx context.Context, cfg config.OutboxConfig) (outbox.Publisher, outbox.BrokerCheck, error) {
	switch cfg.Publisher {
	case "nats":
		p, err := outbox.NewJetStreamPublisher(ctx, cfg.NATS)
		if err != nil {
			return nil, nil, err
		}
		return p, func(context.Context) error {
			if !p.Connected() {
				return errors.New("NATS disconnected")
			}
			return nil
		}, nil
	case "kafka":
		p, err := outbox.NewKafkaPublisher(ctx, cfg.Kafka)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Ping, nil
	case "log":
		return outbox.NewLogPublisher(log.Logger), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown publisher %q", cfg.Publisher)
	}
}
