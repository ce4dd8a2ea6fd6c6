package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os/signal"
	"syscall"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/config"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/handler"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/infra/postgresql"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/infra/postgresql/migrations"
	infraredis "github.com/Honniee/YouthGovernanceWeb-sub004/internal/infra/redis"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/observability"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/service"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/transport"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN, postgresql.Options{MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	metrics := observability.NewMetrics()

	statsCache, err := infraredis.NewStatsCache(rdb, cfg.StatsCacheTTL(), metrics, logger)
	if err != nil {
		logger.Fatal("stats cache initialization failed", zap.Error(err))
	}

	batchService, err := service.NewBatchService(
		repository.NewGormBatchRepo(db),
		repository.NewGormResponseRepo(db),
		statsCache,
		metrics,
		cfg.Location(),
		logger,
	)
	if err != nil {
		logger.Fatal("batch service initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:               "survey-batches",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	app.Use(transport.CorrelationID())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterBatchRoutes(app, batchService); err != nil {
		logger.Fatal("batch routes registration failed", zap.Error(err))
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(net.JoinHostPort("", fmt.Sprint(cfg.APIPort)))
	}()

	logger.Info("survey batch api started",
		zap.Int("port", cfg.APIPort),
		zap.String("timezone", cfg.Location().String()),
		zap.Bool("statsCache", statsCache.Enabled()),
	)

	select {
	case err := <-listenErr:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Error("http server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout()); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
