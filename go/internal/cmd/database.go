package main

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/recruit/go/internal/dbconfig"
)

func setupDatabase(ctx context.Context, cfg dbconfig.Config) (*sql.DB, error) {
	database, err := cfg.Open(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("connected to database")
	return database, nil
}
