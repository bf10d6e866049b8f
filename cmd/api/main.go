// Package main is the entry point for the parking reservation API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/openspot/parking/backend/internal/cache"
	"github.com/openspot/parking/backend/internal/config"
	"github.com/openspot/parking/backend/internal/handler"
	"github.com/openspot/parking/backend/internal/middleware"
	"github.com/openspot/parking/backend/internal/notify"
	"github.com/openspot/parking/backend/internal/repo"
	"github.com/openspot/parking/backend/internal/service"
	"github.com/openspot/parking/backend/migrations"
)

// maxBodyBytes caps request bodies; every payload in the API is tiny.
const maxBodyBytes = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Repository -------------------------------------------------------
	// With DATABASE_URL set, Postgres is the primary store and the in-memory
	// repository is the fallback the decorator fails over to. Without it the
	// server runs entirely in memory, which is fine for demos and tests but
	// loses all state on restart.
	memory := repo.NewMemoryReservationRepo()
	reservations := repo.ReservationRepo(memory)

	if cfg.DatabaseURL != "" {
		if err := migrate(cfg.DatabaseURL); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}

		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(context.Background()); err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		slog.Info("database connection established")

		reservations = repo.NewFallbackReservationRepo(repo.NewReservationRepo(pool), memory, logger)
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory repository")
	}

	// --- Availability cache -----------------------------------------------
	var (
		dayCache    service.DayCache
		invalidator service.Invalidator
		cacheStats  handler.CacheStatser
	)
	if cfg.RedisURL != "" {
		client, err := cache.NewClient(context.Background(), cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		redisCache := cache.NewRedisDayCache(client, cache.DefaultTTL, logger)
		dayCache, invalidator, cacheStats = redisCache, redisCache, redisCache
		slog.Info("redis cache enabled")
	} else {
		memCache := cache.NewMemoryDayCache(cache.DefaultTTL)
		dayCache, invalidator, cacheStats = memCache, memCache, memCache
		slog.Info("in-process cache enabled")
	}

	// --- Notification sinks -----------------------------------------------
	sinks := []service.Notifier{notify.NewLogNotifier(logger)}

	if cfg.FirebaseCredentialsFile != "" {
		client, err := notify.NewMessagingClient(context.Background(), cfg.FirebaseCredentialsFile)
		if err != nil {
			slog.Error("failed to initialize FCM", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, notify.NewFCMNotifier(client, logger))
		slog.Info("push delivery enabled")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		slog.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Warn("scheduler shutdown error", "error", err)
		}
	}()

	notifier := notify.NewReminderScheduler(
		notify.NewMulti(sinks...),
		scheduler,
		notify.DefaultReminderLead,
		logger,
	)

	// --- Services ---------------------------------------------------------
	checker := service.NewConflictChecker(reservations, cfg.Buffer)
	bookings := service.NewBookingService(reservations, checker, notifier, invalidator, cfg.AdminID)
	availability := service.NewAvailabilityService(reservations, dayCache, service.CalendarConfig{
		SlotWidth: cfg.SlotWidth,
		OpenHour:  cfg.OpenHour,
		CloseHour: cfg.CloseHour,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	srv := handler.NewServer(bookings, availability, cacheStats, logger)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending schema migrations from the embedded files.
// goose needs database/sql, so this opens its own short-lived connection
// rather than reusing the pgx pool.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "source", res.Source.Path)
	}
	return nil
}
