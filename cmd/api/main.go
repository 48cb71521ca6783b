package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/intake-service/internal/api/http"
	"github.com/spec-kit/intake-service/internal/api/http/handlers"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/config"
	"github.com/spec-kit/intake-service/internal/events"
	"github.com/spec-kit/intake-service/internal/observability"
	"github.com/spec-kit/intake-service/internal/persistence"
	"github.com/spec-kit/intake-service/internal/repository"
	"github.com/spec-kit/intake-service/internal/service"
	"github.com/spec-kit/intake-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := persistence.NewLocalCache(cfg.Local, logger)
	if err != nil {
		logger.Fatal("failed to open local cache", zap.Error(err))
	}
	defer cache.Close()

	remote := persistence.NewRemoteManager(ctx, cfg.Remote, logger)
	defer remote.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	localStore := repository.NewLocalStore(cache)

	settings := service.NewSettingsService(cfg, localStore, remote, logger)
	settings.RestoreRemote(ctx)

	if cfg.Remote.RunMigrations {
		if err := persistence.RunMigrations(ctx, remote.Pool(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ledger := repository.NewSubmissionLedger(redis, remote, logger)
	limiter := service.NewRateLimiter(ledger, cfg.RateLimit.Window(), logger)

	requestStore := service.NewRequestStore(
		repository.NewRemoteRequests(remote),
		repository.NewLocalRequests(localStore),
		cfg.Remote.Timeout(),
		logger,
	)
	broadcasts := service.NewBroadcastService(
		repository.NewRemoteBroadcasts(remote),
		repository.NewLocalBroadcasts(localStore),
		dispatcher,
		cfg.Remote.Timeout(),
		logger,
	)

	session := auth.NewSession(cfg.Admin, localStore, logger)
	guard := auth.NewLoginGuard(cfg.Admin.MaxLoginAttempts)

	notifier := service.NewNotifier(settings, cfg.Notify.Timeout(), logger)
	notifier.RegisterHandlers(dispatcher)

	intake := service.NewIntakeService(service.IntakeDependencies{
		Store:      requestStore,
		Limiter:    limiter,
		Session:    session,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, remote, redis, cache),
		Requests:        handlers.NewRequestsHandler(intake),
		Broadcasts:      handlers.NewBroadcastsHandler(broadcasts),
		Admin:           handlers.NewAdminHandler(session, guard, settings, notifier),
		AdminMiddleware: auth.NewAdminMiddleware(session),
	})

	worker.StartBroadcastPoller(ctx, broadcasts, cfg.Broadcast.PollInterval(), logger)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
