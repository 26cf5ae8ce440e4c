package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/recruit/go/internal/applications"
	"github.com/mcdev12/recruit/go/internal/config"
	"github.com/mcdev12/recruit/go/internal/discovery"
	"github.com/mcdev12/recruit/go/internal/identity"
	"github.com/mcdev12/recruit/go/internal/invitations"
	"github.com/mcdev12/recruit/go/internal/joinrequests"
	"github.com/mcdev12/recruit/go/internal/metrics"
	"github.com/mcdev12/recruit/go/internal/notify"
	"github.com/mcdev12/recruit/go/internal/roster"
	"github.com/mcdev12/recruit/go/internal/rpc"
	"github.com/mcdev12/recruit/go/internal/store/postgres"
)

// mountable is implemented by every domain Service.
type mountable interface {
	Handler(resolver rpc.Resolver) (string, http.Handler)
}

type Services struct {
	Resolver rpc.Resolver
	Handlers []mountable
	// Sweeper is nil when the sweep is disabled.
	Sweeper *invitations.Sweeper
}

func setupServices(ctx context.Context, cfg config.Config, database *sql.DB) (*Services, func(), error) {
	st := postgres.New(database)
	if err := st.Migrate(ctx); err != nil {
		return nil, nil, err
	}

	clock := clockwork.NewRealClock()
	m := metrics.New(prometheus.DefaultRegisterer)
	notifier := notify.NewEmitter(clock, m)

	cache, closeCache, err := setupCandidateCache(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}

	rosterApp := roster.NewApp(st, notifier, clock, m)
	invitationsApp := invitations.NewApp(st, notifier, clock, m, cfg.Invitations.TTL)
	joinRequestsApp := joinrequests.NewApp(st, notifier, clock, m)
	applicationsApp := applications.NewApp(st, notifier, clock, m)
	discoveryApp := discovery.NewApp(st, cache, cfg.Discovery, m)

	services := &Services{
		Resolver: identity.NewJWT(cfg.Auth.Secret, cfg.Auth.Issuer, st, clock),
		Handlers: []mountable{
			roster.NewService(rosterApp),
			invitations.NewService(invitationsApp),
			joinrequests.NewService(joinRequestsApp),
			applications.NewService(applicationsApp),
			discovery.NewService(discoveryApp),
		},
	}
	if cfg.Invitations.SweepInterval > 0 {
		services.Sweeper = invitations.NewSweeper(invitationsApp, clock, cfg.Invitations.SweepInterval)
	}
	return services, closeCache, nil
}

// setupCandidateCache connects the discovery cache. Without a Redis URL
// discovery runs uncached.
func setupCandidateCache(ctx context.Context, cfg config.RedisConfig) (discovery.Cache, func(), error) {
	if cfg.URL == "" {
		log.Info().Msg("redis not configured, discovery cache disabled")
		return nil, func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info().Str("addr", opts.Addr).Msg("connected to redis")
	return discovery.NewRedisCache(client, cfg.Prefix), func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}, nil
}
