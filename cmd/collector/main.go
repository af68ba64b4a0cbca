package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/pulsemetrics/collector/internal/bulk"
	"github.com/pulsemetrics/collector/internal/config"
	"github.com/pulsemetrics/collector/internal/consumer"
	"github.com/pulsemetrics/collector/internal/handlers"
	"github.com/pulsemetrics/collector/internal/logging"
	"github.com/pulsemetrics/collector/internal/middleware"
	"github.com/pulsemetrics/collector/internal/pending"
	"github.com/pulsemetrics/collector/internal/queue"
	"github.com/pulsemetrics/collector/internal/ratelimit"
	"github.com/pulsemetrics/collector/internal/replay"
	"github.com/pulsemetrics/collector/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("collector"))
	logging.SetDefault(logger)

	slog.Info("Starting collector service",
		slog.Int("port", cfg.Server.Port),
		slog.String("environment", cfg.Environment),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Run DB migrations
	m, err := migrate.New("file://"+cfg.Database.MigrationsPath, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database migrations completed")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := pending.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	slog.Info("Connected to pending store")

	osClient, err := bulk.NewClient(cfg.OpenSearch)
	if err != nil {
		log.Fatalf("Failed to create OpenSearch client: %v", err)
	}
	slog.Info("Connected to OpenSearch", slog.String("url", cfg.OpenSearch.URL))

	// Initialize rate limiter
	var limiter ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.NewRedisRateLimiter(
			cfg.RateLimit.RedisURL,
			cfg.RateLimit.Requests,
			cfg.RateLimit.Window,
		)
		if err != nil {
			slog.Warn("Failed to initialize rate limiter, continuing without",
				slog.String("error", err.Error()))
			limiter = &ratelimit.NoOpRateLimiter{}
		} else {
			slog.Info("Rate limiting enabled",
				slog.Int("requests", cfg.RateLimit.Requests),
				slog.Duration("window", cfg.RateLimit.Window))
		}
	} else {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	defer limiter.Close()

	// Wire the pipeline. The queue's receive side goes to the consumer
	// and nowhere else.
	q := queue.New(cfg.Pipeline.QueueCapacity)
	writer := bulk.NewWriter(osClient, store, cfg.Environment, cfg.OpenSearch.BulkTimeout)
	cons := consumer.New(q.Events(), writer, cfg.Pipeline.BatchSize, cfg.Pipeline.FlushInterval)
	cons.Start()

	scheduler := replay.NewScheduler(store, q, replay.Config{
		Interval: cfg.Pipeline.ReplayInterval,
		PageSize: cfg.Pipeline.ReplayPageSize,
	})
	if err := scheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start replay scheduler: %v", err)
	}

	handler := handlers.NewEventHandler(q, store, limiter)
	auth := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)
	router := server.NewRouter(handler, auth)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Collector listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting requests, then close the queue
	// so the consumer drains and flushes the final buffer, then halt
	// the replay scheduler.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}

	q.Close()
	cons.Wait()

	if err := scheduler.Stop(); err != nil {
		slog.Error("Failed to stop replay scheduler", slog.String("error", err.Error()))
	}

	slog.Info("Collector stopped")
}
