package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/homelinkcare/homecare-booking/internal/api/router"
	"github.com/homelinkcare/homecare-booking/internal/bookings"
	appconfig "github.com/homelinkcare/homecare-booking/internal/config"
	"github.com/homelinkcare/homecare-booking/internal/confirmation"
	"github.com/homelinkcare/homecare-booking/internal/dispatch"
	"github.com/homelinkcare/homecare-booking/internal/http/handlers"
	"github.com/homelinkcare/homecare-booking/internal/notify"
	"github.com/homelinkcare/homecare-booking/internal/observability/metrics"
	"github.com/homelinkcare/homecare-booking/internal/payments"
	"github.com/homelinkcare/homecare-booking/internal/scheduling"
	"github.com/homelinkcare/homecare-booking/internal/session"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

func main() {
	// Local dev convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting homecare booking API",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Guest sessions: Redis when reachable, in-memory otherwise.
	var sessionStore session.Store
	redisClient := newRedisClient(ctx, cfg, logger)
	if redisClient != nil {
		sessionStore = session.NewRedisStore(redisClient)
	} else {
		logger.Warn("redis unavailable, using in-memory session store")
		sessionStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessionStore, logger)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid BOOKING_TZ", "tz", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	var availability scheduling.AvailabilityProvider = scheduling.AlwaysAvailable{}
	if cfg.AllowSimulatedSlots {
		availability = scheduling.NewSimulatedAvailability(cfg.SimulatedSlotSeed, cfg.SimulatedSlotRatio)
	}
	slots := scheduling.NewGenerator(availability, logger,
		scheduling.WithOperatingWindow(cfg.OperatingDayStart, cfg.OperatingDayEnd),
		scheduling.WithLocation(loc),
	)

	var gateway payments.Gateway = payments.DisabledGateway{}
	if cfg.AllowSimulatedCard {
		gateway = payments.NewSimulatedGateway(cfg.SimulatedSlotSeed, 0.9)
	}
	resolver := payments.NewResolver(gateway, logger)
	confirmations := confirmation.NewGenerator(dispatch.NewStaticPoolDispatcher(dispatch.DefaultPool()), logger)

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	// Persistence is optional: without DATABASE_URL the engine still runs,
	// bookings are just not durable and lookup is disabled.
	var repo *bookings.Repository
	var store *bookings.Service
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = bookings.NewRepository(pool)
		var notifier bookings.Notifier
		if n := buildNotifier(ctx, cfg, logger); n != nil {
			notifier = n
		}
		store = bookings.NewService(repo, notifier, bookingMetrics, logger)
	} else {
		logger.Warn("DATABASE_URL not set, bookings will not be persisted")
	}

	flow := handlers.NewFlowHandler(handlers.FlowHandlerDeps{
		Sessions:      sessions,
		Slots:         slots,
		Resolver:      resolver,
		Confirmations: confirmations,
		Store:         store,
		Repo:          repo,
		Metrics:       bookingMetrics,
		Logger:        logger,
	})

	r := router.New(&router.Config{
		Logger:              logger,
		Sessions:            handlers.NewSessionHandler(sessions, flow, logger),
		Services:            handlers.NewServicesHandler(slots, cfg.BookingWindowDays, logger),
		Flow:                flow,
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		SubmitRatePerSecond: cfg.SubmitRatePerSecond,
		SubmitBurst:         cfg.SubmitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

func buildNotifier(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *notify.Service {
	if cfg.NotifyDisabled || cfg.SESFromEmail == "" {
		logger.Info("booking notifications disabled")
		return nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Warn("failed to load AWS config, notifications disabled", "error", err)
		return nil
	}
	email := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
		FromEmail: cfg.SESFromEmail,
		FromName:  cfg.SESFromName,
	}, logger)
	return notify.NewService(email, notify.NewStubSMSSender(logger), logger)
}
