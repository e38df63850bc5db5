package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexchny/connection-jobs/internal/adapters/postgres"
	"github.com/alexchny/connection-jobs/internal/adapters/redis"
	"github.com/alexchny/connection-jobs/internal/api/handlers"
	"github.com/alexchny/connection-jobs/internal/config"
	"github.com/alexchny/connection-jobs/internal/metrics"
	"github.com/alexchny/connection-jobs/internal/ports"
	"github.com/alexchny/connection-jobs/internal/service"
)

func main() {
	// load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// setup logger
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var logger *slog.Logger
	if cfg.Env == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	slog.SetDefault(logger)

	slog.Info("starting connection-jobs api", "env", cfg.Env, "port", cfg.ServerPort, "store", cfg.StoreBackend)

	// connect to database
	db, err := postgres.NewDB(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close db", "error", err)
		}
	}()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.EnsureSchema(schemaCtx)
	cancelSchema()
	if err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to postgres")

	// connect to redis
	redisClient, err := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("failed to close redis", "error", err)
		}
	}()
	slog.Info("connected to redis")

	// create adapters
	var (
		store        ports.JobStore
		statusWriter ports.JobStatusWriter
	)
	switch cfg.StoreBackend {
	case config.BackendRedis:
		jobStore := redis.NewJobStore(redisClient, cfg.JobQueueKey)
		store, statusWriter = jobStore, jobStore
	default:
		jobRepo := postgres.NewJobRepo(db)
		store, statusWriter = jobRepo, jobRepo
	}
	configRepo := postgres.NewConfigRepo(db)
	limiter := redis.NewRateLimiter(redisClient, cfg.SubmissionRateLimit, cfg.SubmissionRateWindow)

	// create services
	creator, err := service.NewJobCreator(metrics.NewInstrumentedStore(store), cfg.WorkerResourceRequirements())
	if err != nil {
		slog.Error("failed to create job creator", "error", err)
		os.Exit(1)
	}
	factory := service.NewSyncJobFactory(configRepo, creator)

	// create handlers
	connectionHandler := handlers.NewConnectionHandler(factory, limiter, cfg.EnqueueTimeout)
	jobHandler := handlers.NewJobHandler(statusWriter)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			slog.Warn("health check failed", "dependency", "postgres", "error", err)
			http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(ctx); err != nil {
			slog.Warn("health check failed", "dependency", "redis", "error", err)
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// job submission routes
	mux.HandleFunc("/api/v1/connections/sync", connectionHandler.SyncConnection)
	mux.HandleFunc("/api/v1/connections/reset", connectionHandler.ResetConnection)

	// execution engine callbacks
	mux.HandleFunc("/api/v1/jobs/{id}/status", jobHandler.UpdateStatus)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	slog.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exited")
}
