package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/travel-console/internal/client"
	"github.com/jwalitptl/travel-console/internal/config"
	approvalHandler "github.com/jwalitptl/travel-console/internal/handler/approval"
	auditHandler "github.com/jwalitptl/travel-console/internal/handler/audit"
	authHandler "github.com/jwalitptl/travel-console/internal/handler/auth"
	"github.com/jwalitptl/travel-console/internal/handler/health"
	notificationHandler "github.com/jwalitptl/travel-console/internal/handler/notification"
	rbacHandler "github.com/jwalitptl/travel-console/internal/handler/rbac"
	resourceHandler "github.com/jwalitptl/travel-console/internal/handler/resource"
	"github.com/jwalitptl/travel-console/internal/middleware"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/internal/repository/cache"
	"github.com/jwalitptl/travel-console/internal/repository/postgres"
	"github.com/jwalitptl/travel-console/internal/router"
	approvalService "github.com/jwalitptl/travel-console/internal/service/approval"
	auditService "github.com/jwalitptl/travel-console/internal/service/audit"
	authService "github.com/jwalitptl/travel-console/internal/service/auth"
	notificationService "github.com/jwalitptl/travel-console/internal/service/notification"
	rbacService "github.com/jwalitptl/travel-console/internal/service/rbac"
	resourceService "github.com/jwalitptl/travel-console/internal/service/resource"
	"github.com/jwalitptl/travel-console/internal/worker"
	"github.com/jwalitptl/travel-console/pkg/auth"
	"github.com/jwalitptl/travel-console/pkg/logger"
	"github.com/jwalitptl/travel-console/pkg/messaging"
	"github.com/jwalitptl/travel-console/pkg/messaging/redis"
	"github.com/jwalitptl/travel-console/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	m := metrics.NewMetrics("console", prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	operatorRepo := postgres.NewOperatorRepository(base)
	rbacRepo := postgres.NewRBACRepository(base)
	auditRepo := postgres.NewAuditRepository(base)

	// Initialize message broker
	broker, err := newBroker(ctx, cfg.Redis, appLogger, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()
	publisher := messaging.NewChannelPublisher(broker, cfg.Redis.Channel)

	// Initialize travel API client
	upstream, err := client.New(cfg.Upstream, appLogger, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create upstream client")
	}

	// Initialize services
	auditSvc := auditService.NewService(auditRepo)
	auditLogger := auditService.NewAuditLogger(auditSvc, appLogger)
	defer auditLogger.Wait()

	rbacSvc := rbacService.NewService(rbacRepo, time.Minute)
	jwtSvc, err := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token service")
	}
	authSvc := authService.NewService(operatorRepo, rbacSvc, jwtSvc, auditLogger, appLogger)

	policy, err := notificationService.ParsePolicy(cfg.Notifications.Policy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid notification policy")
	}
	notificationSvc := notificationService.NewService(
		func(operatorID uuid.UUID) notificationService.Store {
			return upstream.NotificationStore(operatorID.String())
		},
		notificationService.Options{
			Policy:        policy,
			RetryAttempts: cfg.Notifications.RetryAttempts,
			RetryDelay:    cfg.Notifications.RetryDelay,
			IdleTTL:       cfg.Notifications.IdleTTL,
			Logger:        appLogger,
		},
		publisher, auditLogger, m,
	)
	hub := notificationService.NewHub(appLogger)
	if err := hub.Run(ctx, publisher); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to notification events")
	}

	cacheCfg := cache.Config{TTL: cfg.Cache.TTL, CleanupInterval: cfg.Cache.CleanupInterval}
	formatter := resourceService.NewFormatter(language.English)

	contracts := resourceService.NewService("contracts", upstreamCache[model.Contract](upstream, "contracts", cacheCfg, m), resourceService.ContractColumns(formatter))
	balances := resourceService.NewService("balances", upstreamCache[model.BankBalance](upstream, "balances", cacheCfg, m), resourceService.BalanceColumns(formatter))
	documents := resourceService.NewService("documents", upstreamCache[model.Document](upstream, "documents", cacheCfg, m), resourceService.DocumentColumns())
	budgets := resourceService.NewService("budgets", upstreamCache[model.Budget](upstream, "budgets", cacheCfg, m), resourceService.BudgetColumns(formatter))

	approvalPages := resourceService.NewService("approvals", cache.New[model.ApprovalRequest](
		"approvals",
		upstream.Approvals,
		func(ctx context.Context, id string) (*model.ApprovalRequest, error) {
			return client.Get[model.ApprovalRequest](ctx, upstream, "approvals", id)
		},
		cacheCfg, m,
	), resourceService.ApprovalColumns())
	approvalSvc := approvalService.NewService(upstream, approvalPages, approvalService.DefaultPolicy, auditLogger, appLogger)

	auditLogs := resourceService.NewService("audit", auditService.NewSource(auditSvc), resourceService.AuditColumns())

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogger)

	// Initialize handlers
	healthH := health.NewHandler(map[string]health.Check{
		"database": db.PingContext,
	}, prometheus.DefaultGatherer)

	resources := []router.Handler{
		auditedResource(resourceHandler.NewHandler(contracts, "Contracts"), auditMiddleware),
		auditedResource(resourceHandler.NewHandler(balances, "Bank balances"), auditMiddleware),
		auditedResource(resourceHandler.NewHandler(documents, "Documents"), auditMiddleware),
		auditedResource(resourceHandler.NewHandler(budgets, "Budgets"), auditMiddleware),
	}

	r := router.NewRouter(authMiddleware, router.Handlers{
		Health:        healthH,
		Auth:          authHandler.NewHandler(authSvc),
		Notifications: notificationHandler.NewHandler(notificationSvc, hub),
		Approvals:     approvalHandler.NewHandler(approvalSvc),
		Resources:     resources,
		Audit:         auditHandler.NewHandler(auditLogs),
		RBAC:          rbacHandler.NewHandler(rbacSvc),
	}, m, router.Config{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		Timeout:          time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	})
	r.Setup()

	// Start audit retention worker
	cleanup := worker.NewAuditCleanupWorker(auditSvc, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval, appLogger, m)
	go cleanup.Start(ctx)

	// Create server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		appLogger.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited properly")
}

// newBroker connects to Redis when configured. Without Redis, events only
// reach streams held by this process.
func newBroker(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger, m *metrics.Metrics) (messaging.Broker, error) {
	if cfg.URL == "" {
		logger.Warn().Msg("redis.url not set, using in-process broker")
		return messaging.NewLocalBroker(), nil
	}
	return redis.NewRedisBroker(ctx, redis.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}, logger, m)
}

// upstreamCache puts a read-through cache in front of one travel API resource.
func upstreamCache[T model.Resource](c *client.Client, name string, cfg cache.Config, m *metrics.Metrics) *cache.ResourceCache[T] {
	return cache.New[T](
		name,
		func(ctx context.Context, params model.ListParams) (*model.ListResponse[T], error) {
			return client.List[T](ctx, c, name, params)
		},
		func(ctx context.Context, id string) (*T, error) {
			return client.Get[T](ctx, c, name, id)
		},
		cfg, m,
	)
}

func auditedResource[T model.Resource](h *resourceHandler.Handler[T], mw *middleware.AuditMiddleware) *resourceHandler.Handler[T] {
	name := h.Name()
	return h.
		WithExportMiddleware(mw.AuditLog(model.AuditActionExport, model.AuditEntityResource, name)).
		WithClearMiddleware(mw.AuditLog(model.AuditActionClearCache, model.AuditEntityResource, name))
}
