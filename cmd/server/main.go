package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"glowsalon/internal/api"
	"glowsalon/internal/availability"
	"glowsalon/internal/booking"
	"glowsalon/internal/cache"
	"glowsalon/internal/config"
	"glowsalon/internal/database"
	"glowsalon/internal/events"
	"glowsalon/internal/metrics"
	"glowsalon/internal/models"
	"glowsalon/internal/reflection"
	"glowsalon/internal/reminders"
	"glowsalon/internal/slots"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("GLOWSALON_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(cfg.Monitoring.Namespace, registry)

	generator, err := slots.NewGenerator(
		cfg.Booking.BusinessOpen, cfg.Booking.BusinessClose,
		cfg.Booking.SlotIntervalMinutes, cfg.LeadTime(),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid business hours")
	}

	bus := events.NewEventBus()
	evaluator := availability.NewEvaluator(db, db, &logger)
	committer := booking.NewCommitter(db, evaluator, bus, m, &logger)
	lifecycle := booking.NewLifecycle(db, bus, m, &logger)
	reflector := reflection.NewReflector(models.HomeServiceLocation, &logger)
	snapshot := cache.NewSnapshot(rdb, cfg.CacheTTL(), m, &logger)
	refresher := cache.NewRefresher(snapshot, bus, cfg.RefreshInterval(), m, &logger)

	server := api.NewHTTPServer(api.Options{
		Generator: generator,
		Evaluator: evaluator,
		Reflector: reflector,
		Committer: committer,
		Lifecycle: lifecycle,
		Store:     db,
		Directory: db,
		Snapshot:  snapshot,
		Metrics:   m,
		Logger:    &logger,
		RateLimit: rate.Limit(cfg.Booking.RateLimitPerSecond),
		RateBurst: cfg.Booking.RateLimitBurst,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go refresher.Start(ctx)

	reminder := reminders.NewService(db, reminders.LogNotifier{Logger: &logger}, cfg.Booking.ReminderHour, &logger)
	go reminder.Start(ctx)

	backup := database.NewBackupService(cfg.Database.Path, database.BackupConfig{
		Enabled:       cfg.Backup.Enabled,
		IntervalHours: cfg.Backup.IntervalHours,
		Path:          cfg.Backup.Path,
		RetentionDays: cfg.Backup.RetentionDays,
	}, &logger)
	go backup.Start(ctx)

	go startHealthServer(ctx, cfg.Server.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		port := cfg.Monitoring.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go startMetricsServer(ctx, port, registry, &logger)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("api server shutdown error")
		}
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("scheduling service started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("api server error")
	}
	logger.Info().Msg("scheduling service stopped")
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, registry *prometheus.Registry, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
