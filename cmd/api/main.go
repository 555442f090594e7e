package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/adapters/cache"
	"github.com/zatekoja/carebook/internal/adapters/database"
	"github.com/zatekoja/carebook/internal/adapters/events"
	"github.com/zatekoja/carebook/internal/adapters/locks"
	"github.com/zatekoja/carebook/internal/adapters/memory"
	"github.com/zatekoja/carebook/internal/api/handlers"
	"github.com/zatekoja/carebook/internal/api/routes"
	"github.com/zatekoja/carebook/internal/application/services"
	"github.com/zatekoja/carebook/internal/domain/providers"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	"github.com/zatekoja/carebook/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/carebook/internal/infrastructure/clients/redis"
	"github.com/zatekoja/carebook/internal/infrastructure/observability"
	"github.com/zatekoja/carebook/internal/seed"
	"github.com/zatekoja/carebook/pkg/config"
	"golang.org/x/sync/errgroup"
)

type stores struct {
	providers repositories.ProviderRepository
	services  repositories.ServiceRepository
	bookings  repositories.BookingRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	dependencies := map[string]routes.Pinger{}

	st, closeStores, err := openStores(cfg, dependencies)
	if err != nil {
		return err
	}
	defer closeStores()

	var (
		locker   providers.SlotLocker
		eventBus providers.EventBus
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		defer redisClient.Close()
		dependencies["redis"] = redisClient

		locker = locks.NewRedisLocker(redisClient, cfg.Scheduling.LockTTL, cfg.Scheduling.LockWait)
		eventBus = events.NewRedisEventBus(redisClient)
		st.services = database.NewCachedServiceAdapter(st.services, cache.NewRedisAdapter(redisClient), cfg.Scheduling.ServiceCacheTTL)
		log.Info().Msg("using Redis for slot locks, schedule events and catalog cache")
	} else {
		locker = locks.NewKeyedMutex()
		eventBus = events.NewMemoryEventBus()
		log.Info().Msg("using in-process slot locks and schedule events")
	}
	defer func() {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}()

	if err := applySeed(ctx, cfg, st); err != nil {
		return err
	}

	availabilityService := services.NewAvailabilityService(st.providers, st.services, st.bookings, locker, eventBus, metrics)
	bookingService := services.NewBookingService(st.bookings, st.providers, st.services, locker, eventBus, metrics)

	router := routes.NewRouter(
		handlers.NewAvailabilityHandler(availabilityService),
		handlers.NewBookingHandler(bookingService),
		handlers.NewSSEHandler(eventBus),
		metrics,
	)
	for name, dep := range dependencies {
		router.WithDependency(name, dep)
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset so event streams are not cut off
		IdleTimeout: 60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStores builds the repositories for the configured driver
func openStores(cfg *config.Config, dependencies map[string]routes.Pinger) (*stores, func(), error) {
	if cfg.Database.Driver == "memory" {
		log.Info().Msg("using in-memory storage")
		return &stores{
			providers: memory.NewProviderAdapter(),
			services:  memory.NewServiceAdapter(),
			bookings:  memory.NewBookingAdapter(),
		}, func() {}, nil
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := pgClient.Migrate(); err != nil {
			pgClient.Close()
			return nil, nil, err
		}
		log.Info().Msg("database migrations applied")
	}
	dependencies["postgres"] = pgClient

	return &stores{
		providers: database.NewProviderAdapter(pgClient),
		services:  database.NewServiceAdapter(pgClient),
		bookings:  database.NewBookingAdapter(pgClient),
	}, func() { pgClient.Close() }, nil
}

// applySeed loads SEED_FILE, or the bundled demo directory when running in memory
func applySeed(ctx context.Context, cfg *config.Config, st *stores) error {
	var (
		f   *seed.File
		err error
	)
	switch {
	case cfg.Scheduling.SeedFile != "":
		f, err = seed.Load(cfg.Scheduling.SeedFile)
	case cfg.Database.Driver == "memory":
		f, err = seed.Default()
	default:
		return nil
	}
	if err != nil {
		return err
	}
	return seed.Apply(ctx, f, st.providers, st.services)
}
