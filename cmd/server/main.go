package main

import (
	"context"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maitred/internal/api"
	"maitred/internal/config"
	"maitred/internal/database"
	"maitred/internal/domain"
	"maitred/internal/events"
	"maitred/internal/ledger"
	"maitred/internal/logging"
	"maitred/internal/metrics"
	"maitred/internal/repository"
	"maitred/internal/server"
	"maitred/internal/service"
	"maitred/internal/worker"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	metrics.Register()

	store, err := ledger.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	if err := store.EnsureFiles(); err != nil {
		return err
	}
	locks := ledger.NewLockRegistry()

	db, err := database.NewDB(cfg.Storage.UsersDBPath, cfg.Server.AdminUser, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := initAvailabilityCache(ctx, cfg, logger)

	eventBus := events.NewEventBus()
	subscribeEvents(eventBus, logger)

	reservationService := service.NewReservationService(locks, store, cache, eventBus, logger)
	userService := service.NewUserService(db, reservationService, eventBus, logger)

	if cfg.Backup.Enabled {
		backupService := worker.NewBackupService(cfg.Storage.DataDir, cfg.Storage.UsersDBPath, cfg.Backup, logger)
		go backupService.Start(ctx)
	}

	if cfg.Exports.Enabled {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		exporter := worker.NewOccupancyExporter(reservationService, cfg.Exports, retryPolicy, logger)
		go exporter.Start(ctx)
	}

	if cfg.Monitoring.Enabled {
		apiServer := api.NewHTTPServer(cfg.Monitoring, reservationService, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("monitoring API error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	return serveProtocol(ctx, cfg, userService, reservationService, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()
	return cfg, &logger, closer, nil
}

func initAvailabilityCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.AvailabilityCache {
	if !cfg.Cache.Enabled {
		return nil
	}

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	memory := repository.NewMemoryAvailabilityCache(ttl)
	if !cfg.Redis.Enabled {
		logger.Info().Msg("availability cache: in-memory only")
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable at startup, failover cache will retry")
	}

	primary := repository.NewRedisAvailabilityCache(client, ttl)
	logger.Info().Str("address", cfg.Redis.Address).Msg("availability cache: redis with memory failover")
	return repository.NewFailoverAvailabilityCache(primary, memory, logger)
}

func subscribeEvents(bus *events.EventBus, logger *zerolog.Logger) {
	logEvent := func(event *events.Event) error {
		logger.Info().
			Str("event_type", event.Type).
			RawJSON("payload", event.Payload).
			Msg("domain event")
		return nil
	}
	bus.Subscribe(events.EventReservationMade, logEvent)
	bus.Subscribe(events.EventReservationCancelled, logEvent)
	bus.Subscribe(events.EventScheduleChanged, logEvent)
	bus.Subscribe(events.EventAccountDeleted, logEvent)
}

func serveProtocol(ctx context.Context, cfg *config.Config, users *service.UserService, reservations *service.ReservationService, logger *zerolog.Logger) error {
	lis, err := net.Listen("tcp", cfg.Server.ListenAddr)
	if err != nil {
		return err
	}

	// The accept loop has no shutdown signal of its own; closing the
	// listener is what ends it.
	go func() {
		<-ctx.Done()
		_ = lis.Close()
	}()

	srv := server.New(users, reservations, cfg.Server.AdminUser, logger)
	err = srv.Serve(lis)
	if ctx.Err() != nil {
		logger.Info().Msg("server stopped")
		return nil
	}
	return err
}
