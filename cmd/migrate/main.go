package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/carebook/internal/infrastructure/observability"
	"github.com/zatekoja/carebook/pkg/config"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	status := flag.Bool("status", false, "print the applied schema version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("carebook-migrate", cfg.Server.Environment)

	client, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer client.Close()

	switch {
	case *status:
		version, dirty, err := client.MigrationVersion()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read migration version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
	case *down > 0:
		if err := client.MigrateDown(*down); err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
		log.Info().Int("steps", *down).Msg("migrations rolled back")
	default:
		if err := client.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("migrations applied")
	}
}
