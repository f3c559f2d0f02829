package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	ordercontrollers "github.com/angelmondragon/fooddash-backend/api/controllers/orders"
	"github.com/angelmondragon/fooddash-backend/api/routes"
	"github.com/angelmondragon/fooddash-backend/internal/address"
	"github.com/angelmondragon/fooddash-backend/internal/cart"
	"github.com/angelmondragon/fooddash-backend/internal/fees"
	"github.com/angelmondragon/fooddash-backend/internal/menuoptions"
	"github.com/angelmondragon/fooddash-backend/internal/orders"
	"github.com/angelmondragon/fooddash-backend/internal/paymentmethods"
	"github.com/angelmondragon/fooddash-backend/internal/pricing"
	"github.com/angelmondragon/fooddash-backend/internal/products"
	"github.com/angelmondragon/fooddash-backend/internal/stores"
	"github.com/angelmondragon/fooddash-backend/internal/tracking"
	"github.com/angelmondragon/fooddash-backend/internal/users"
	"github.com/angelmondragon/fooddash-backend/pkg/config"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/env"
	"github.com/angelmondragon/fooddash-backend/pkg/instance"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	"github.com/angelmondragon/fooddash-backend/pkg/maps"
	"github.com/angelmondragon/fooddash-backend/pkg/metrics"
	"github.com/angelmondragon/fooddash-backend/pkg/migrate"
	"github.com/angelmondragon/fooddash-backend/pkg/outbox"
	"github.com/angelmondragon/fooddash-backend/pkg/pubsub"
	"github.com/angelmondragon/fooddash-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	orderMetrics := metrics.NewOrderMetrics(registry)

	mapsClient, err := maps.NewClient(cfg.GoogleMaps.APIKey,
		maps.WithTimeout(cfg.GoogleMaps.Timeout),
		maps.WithRetries(cfg.GoogleMaps.Retries, 200*time.Millisecond),
		maps.WithObserver(orderMetrics.ObserveProvider),
	)
	if err != nil {
		logg.Error(ctx, "failed to create maps client", err)
		os.Exit(1)
	}

	// Without Pub/Sub the location route answers DEPENDENCY_ERROR.
	var trackingPublisher *tracking.PubSubPublisher
	if cfg.GCP.ProjectID != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		if topic := psClient.TrackingPublisher(); topic != nil {
			trackingPublisher = tracking.NewPubSubPublisher(topic, logg)
		}
	} else {
		logg.Warn(ctx, "gcp project not configured, rider tracking disabled")
	}

	conn := dbClient.DB()
	storeRepo := stores.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	optionRepo := menuoptions.NewRepository(conn)
	paymentMethodRepo := paymentmethods.NewRepository(conn)
	userRepo := users.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	addressService := address.NewService(mapsClient)

	storeService, err := stores.NewService(storeRepo, addressService)
	if err != nil {
		logg.Error(ctx, "failed to create store service", err)
		os.Exit(1)
	}
	productService, err := products.NewService(productRepo, storeRepo)
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}
	menuOptionService, err := menuoptions.NewService(optionRepo, productRepo, dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create menu option service", err)
		os.Exit(1)
	}
	paymentMethodService, err := paymentmethods.NewService(paymentmethods.ServiceParams{Repo: paymentMethodRepo})
	if err != nil {
		logg.Error(ctx, "failed to create payment method service", err)
		os.Exit(1)
	}
	userService, err := users.NewService(userRepo, addressService)
	if err != nil {
		logg.Error(ctx, "failed to create user service", err)
		os.Exit(1)
	}

	engine, err := pricing.NewEngine(productRepo, optionRepo)
	if err != nil {
		logg.Error(ctx, "failed to create pricing engine", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.NewRepository(conn), dbClient, engine)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:           orderRepo,
		Tx:             dbClient,
		Outbox:         outbox.NewService(outbox.NewRepository(conn), logg),
		Lines:          engine,
		PaymentMethods: paymentMethodRepo,
		Stores:         storeRepo,
		Users:          userRepo,
		Distance:       mapsClient,
		Routes:         mapsClient,
		Locker:         redisClient,
		LockTTL:        cfg.Checkout.LockTTL,
		Schedule:       fees.ScheduleFromConfig(cfg.Pricing),
		RiderSpeedKPH:  cfg.Pricing.RiderSpeedKPH,
		Metrics:        orderMetrics,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create order service", err)
		os.Exit(1)
	}

	var tracker ordercontrollers.LocationBroadcaster
	if trackingPublisher != nil {
		trackingService, err := tracking.NewService(orderRepo, trackingPublisher, logg)
		if err != nil {
			logg.Error(ctx, "failed to create tracking service", err)
			os.Exit(1)
		}
		tracker = trackingService
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			storeService,
			productService,
			menuOptionService,
			paymentMethodService,
			userService,
			addressService,
			cartService,
			orderService,
			tracker,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}
