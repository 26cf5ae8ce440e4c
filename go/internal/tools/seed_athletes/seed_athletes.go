package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/recruit/go/internal/dbconfig"
)

// Athlete mirrors one entry of athletes.json.
type Athlete struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	PrimarySport   string    `json:"primary_sport"`
	SecondarySport *string   `json:"secondary_sport"`
	Rank           int       `json:"rank"`
	Classification string    `json:"classification"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
}

const insertAthlete = `
    INSERT INTO athletes (
      id, username, first_name, last_name, primary_sport, secondary_sport,
      rank, classification, latitude, longitude
    ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (id) DO NOTHING`

func main() {
	ctx := context.Background()

	path := "go/internal/assets/athletes.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		os.Exit(1)
	}
	var athletes []Athlete
	if err := json.Unmarshal(data, &athletes); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal athletes: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	poolCfg, err := dbconfig.NewConfigFromEnv().PgxPoolConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Queue every insert in one batch
	batch := &pgx.Batch{}
	for _, a := range athletes {
		batch.Queue(insertAthlete,
			a.ID, a.Username, a.FirstName, a.LastName, a.PrimarySport, a.SecondarySport,
			a.Rank, a.Classification, a.Latitude, a.Longitude,
		)
	}

	results := pool.SendBatch(ctx, batch)
	total, inserted, skipped, errs := len(athletes), 0, 0, 0
	for _, a := range athletes {
		tag, err := results.Exec()
		if err != nil {
			fmt.Fprintf(os.Stderr, "insert %s: %v\n", a.Username, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	if err := results.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close batch: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf(
		"Athletes seed: total=%d inserted=%d skipped=%d errors=%d\n",
		total, inserted, skipped, errs,
	)
}
