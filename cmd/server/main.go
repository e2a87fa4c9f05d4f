package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/database"
	"github.com/stemsi/marksheet-analytics/internal/handler"
	"github.com/stemsi/marksheet-analytics/internal/logger"
	"github.com/stemsi/marksheet-analytics/internal/middleware"
	"github.com/stemsi/marksheet-analytics/internal/repository"
	"github.com/stemsi/marksheet-analytics/internal/router"
	"github.com/stemsi/marksheet-analytics/internal/service"
	"github.com/stemsi/marksheet-analytics/internal/validator"
	"github.com/stemsi/marksheet-analytics/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting marksheet analytics")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Analysis Thresholds ───────────────────────────────────────────
	analysisOpts, err := config.LoadAnalysis(cfg.AnalysisConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load analysis config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	reviewRepo := repository.NewReviewRepository(pool)
	runRepo := repository.NewAnalysisRunRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	datasetService := service.NewDatasetService(rdb, cfg, log)
	analysisService := service.NewAnalysisService(datasetService, service.NewRedisRunQueue(rdb), analysisOpts, cfg, log)
	reviewService := service.NewReviewService(reviewRepo, cfg.ReviewLimit, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Dataset:  handler.NewDatasetHandler(datasetService, cfg.MaxUploadBytes),
		Analysis: handler.NewAnalysisHandler(analysisService),
		Review:   handler.NewReviewHandler(reviewService),
		Admin:    handler.NewAdminHandler(runRepo),
		System: handler.NewSystemHandler(func(ctx context.Context) database.Status {
			return database.Check(ctx, pool, rdb)
		}),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	runWorker := worker.NewAnalysisRunWorker(runRepo, rdb, log)
	runWorkerDone := make(chan struct{})
	go runWorker.Start(workerCtx, runWorkerDone)

	limiter := middleware.NewRateLimiter(workerCtx, cfg.RateLimitPerMinute, time.Minute)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, limiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the run queue to flush.
	workerCancel()
	select {
	case <-runWorkerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Run worker did not drain before shutdown deadline")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
