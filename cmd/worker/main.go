package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/travel-console/internal/config"
	"github.com/jwalitptl/travel-console/internal/repository/postgres"
	"github.com/jwalitptl/travel-console/internal/service/audit"
	"github.com/jwalitptl/travel-console/internal/worker"
	"github.com/jwalitptl/travel-console/pkg/logger"
	"github.com/jwalitptl/travel-console/pkg/metrics"
)

// The worker runs audit retention outside the API process, for deployments
// that scale the API horizontally.
func main() {
	once := flag.Bool("once", false, "run a single cleanup and exit")
	healthAddr := flag.String("health-addr", ":8081", "address of the health and metrics listener")
	flag.Parse()

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger
	appLogger := logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	m := metrics.NewMetrics("console_worker", prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	auditSvc := audit.NewService(postgres.NewAuditRepository(postgres.NewBaseRepository(db)))
	cleanup := worker.NewAuditCleanupWorker(auditSvc, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval, appLogger, m)

	if *once {
		if _, err := cleanup.RunOnce(ctx); err != nil {
			appLogger.Fatal().Err(err).Msg("Audit cleanup failed")
		}
		return
	}

	// Setup health check endpoints
	srv := setupHealthCheck(*healthAddr, appLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	appLogger.Info().Int("retention_days", cfg.Audit.RetentionDays).Dur("interval", cfg.Audit.CleanupInterval).Msg("Worker started")
	cleanup.Start(ctx)
	appLogger.Info().Msg("Shutting down...")
}

func setupHealthCheck(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Health check server failed")
		}
	}()
	return srv
}
