// Command expire_invitations marks every pending invitation past its expiry
// as EXPIRED. Run it from cron; the API also expires invitations lazily.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/recruit/go/internal/config"
	"github.com/mcdev12/recruit/go/internal/invitations"
	"github.com/mcdev12/recruit/go/internal/notify"
	"github.com/mcdev12/recruit/go/internal/store/postgres"
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

	clock := clockwork.NewRealClock()
	app := invitations.NewApp(postgres.New(db), notify.NewEmitter(clock, nil), clock, nil, cfg.Invitations.TTL)

	n, err := app.ExpireStale(ctx)
	if err != nil {
		log.Error().Err(err).Msg("expire invitations")
		os.Exit(1)
	}
	log.Info().Int64("expired", n).Msg("expired stale invitations")
}
