// Seed loads a providers/services YAML file into PostgreSQL.
//
//	go run scripts/seed.go -file seed.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/adapters/database"
	"github.com/zatekoja/carebook/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/carebook/internal/infrastructure/observability"
	"github.com/zatekoja/carebook/internal/seed"
	"github.com/zatekoja/carebook/pkg/config"
)

func main() {
	file := flag.String("file", "", "seed YAML file (defaults to the bundled demo directory)")
	reset := flag.Bool("reset", false, "truncate schedule tables before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("carebook-seed", cfg.Server.Environment)

	client, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer client.Close()

	if err := client.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx := context.Background()
	if *reset {
		log.Warn().Msg("reset requested, truncating tables before seeding")
		if _, err := client.DB().ExecContext(ctx, `TRUNCATE TABLE bookings, providers, services`); err != nil {
			log.Fatal().Err(err).Msg("failed to truncate tables")
		}
	}

	var f *seed.File
	if *file != "" {
		f, err = seed.Load(*file)
	} else {
		f, err = seed.Default()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load seed data")
	}

	if err := seed.Apply(ctx, f, database.NewProviderAdapter(client), database.NewServiceAdapter(client)); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
}
