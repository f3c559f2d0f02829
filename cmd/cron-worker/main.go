package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/fooddash-backend/internal/cart"
	"github.com/angelmondragon/fooddash-backend/internal/cron"
	"github.com/angelmondragon/fooddash-backend/pkg/config"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/instance"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	"github.com/angelmondragon/fooddash-backend/pkg/metrics"
	"github.com/angelmondragon/fooddash-backend/pkg/migrate"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox"
	"github.com/angelmondragon/fooddash-backend/pkg/redis"
)

const lockKeyFormat = "fd:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Maintenance.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	outboxJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:        logg,
		DB:            dbClient,
		Repository:    outbox.NewRepository(conn),
		RetentionDays: cfg.Maintenance.OutboxRetentionDays,
	})
	if err != nil {
		logg.Error(ctx, "failed to create outbox retention job", err)
		os.Exit(1)
	}
	cartJob, err := cron.NewCartItemExpiryJob(cron.CartItemExpiryJobParams{
		Logger:        logg,
		DB:            dbClient,
		Repository:    cart.NewRepository(conn),
		RetentionDays: cfg.Maintenance.CartItemRetentionDays,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart item expiry job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(outboxJob, cartJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Schedule: cfg.Maintenance.Schedule,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
		"schedule": cfg.Maintenance.Schedule,
		"jobs":     registry.Names(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
