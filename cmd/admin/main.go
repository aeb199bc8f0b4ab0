package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/resale-admin/internal/api/http"
	"github.com/spec-kit/resale-admin/internal/api/http/handlers"
	"github.com/spec-kit/resale-admin/internal/audit"
	"github.com/spec-kit/resale-admin/internal/auth"
	"github.com/spec-kit/resale-admin/internal/config"
	"github.com/spec-kit/resale-admin/internal/credentials"
	"github.com/spec-kit/resale-admin/internal/entitystore"
	"github.com/spec-kit/resale-admin/internal/events"
	"github.com/spec-kit/resale-admin/internal/observability"
	"github.com/spec-kit/resale-admin/internal/persistence"
	"github.com/spec-kit/resale-admin/internal/service"
	"github.com/spec-kit/resale-admin/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	tokenSource := credentials.NewRedisStore(redis.Client, cfg.EntityStore.TokenKey, cfg.EntityStore.StaticToken, logger)
	storeClient := entitystore.NewHTTPClient(cfg.EntityStore, tokenSource, logger)

	consoleService := service.NewConsoleService(service.ConsoleDependencies{
		Store:      storeClient,
		Dispatcher: dispatcher,
		AuditRepo:  audit.NewRepository(pg.PoolHandle()),
		Metrics:    metrics,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Session:        handlers.NewSessionHandler(tokenManager, cfg.Auth),
		Tickets:        handlers.NewTicketsHandler(consoleService),
		AuthMiddleware: authMiddleware,
	})

	if _, err := consoleService.Refresh(ctx); err != nil {
		logger.Warn("initial snapshot load failed; serving empty until refresh", zap.Error(err))
	}
	worker.StartRefreshWorker(ctx, consoleService, cfg.Refresh.Interval(), logger)

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
