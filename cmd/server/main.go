package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	fulfillmentapp "github.com/stockflow/backend/internal/application/fulfillment"
	orderapp "github.com/stockflow/backend/internal/application/order"
	stockapp "github.com/stockflow/backend/internal/application/stock"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/auth"
	"github.com/stockflow/backend/internal/infrastructure/cache"
	"github.com/stockflow/backend/internal/infrastructure/config"
	"github.com/stockflow/backend/internal/infrastructure/event"
	"github.com/stockflow/backend/internal/infrastructure/logger"
	"github.com/stockflow/backend/internal/infrastructure/migration"
	"github.com/stockflow/backend/internal/infrastructure/notify"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/infrastructure/telemetry"
	"github.com/stockflow/backend/internal/interfaces/http/handler"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
	"github.com/stockflow/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer log.Sync() //nolint:errcheck

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if tracerProvider.IsEnabled() && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(cfg.Database.DBName); err != nil {
			log.Warn("failed to enable database tracing", zap.Error(err))
		}
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}

	migrator, err := migration.New(sqlDB, "migrations", log)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		return err
	}

	// Wiring
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	levelRepo := persistence.NewGormStockLevelRepository(db.DB)
	scope := persistence.NewGormTransactionScopeWithTimeout(db.DB, cfg.Database.StatementTimeout)

	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer bus.Stop(context.Background()) //nolint:errcheck

	idempotencyStore := newIdempotencyStore(cfg, log)
	defer idempotencyStore.Close() //nolint:errcheck

	auditHandler := event.NewIdempotentHandler(fulfillmentapp.NewMovementAuditHandler(log), idempotencyStore, log)
	bus.Subscribe(auditHandler)

	orderService := orderapp.NewService(orderRepo, log)
	orderService.SetEventPublisher(bus)

	fulfillmentService := fulfillmentapp.NewService(scope, log)
	fulfillmentService.SetEventPublisher(bus)
	fulfillmentService.SetIdempotencyStore(idempotencyStore)

	stockQueries := stockapp.NewQueryService(levelRepo, log)
	notifier := notify.NewLogNotifier(&cfg.Notify, log)
	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(router.Config{
		Logger:      log,
		JWTService:  jwtService,
		CORSOrigins: cfg.HTTP.CORSAllowOrigins,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		System:      handler.NewSystemHandler(sqlDB, log),
		Order:       handler.NewOrderHandler(orderService, notifier, log),
		Fulfillment: handler.NewFulfillmentHandler(fulfillmentService, log),
		Stock:       handler.NewStockHandler(stockQueries, fulfillmentService, log),
	})

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newIdempotencyStore prefers Redis and degrades to the in-process store when
// Redis is unreachable.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	store, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-memory idempotency store",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err))
		return cache.NewInMemoryIdempotencyStore()
	}
	log.Info("redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	return store
}
