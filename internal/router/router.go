package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/travel-console/internal/middleware"
	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/pkg/metrics"
	"github.com/jwalitptl/travel-console/pkg/validator"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler has both public and token-protected routes.
type AuthHandler interface {
	Handler
	RegisterProtectedRoutes(*gin.RouterGroup)
}

// Handlers groups everything the router mounts. Nil handlers are skipped.
type Handlers struct {
	Health        Handler
	Auth          AuthHandler
	Notifications Handler
	Approvals     Handler
	Resources     []Handler
	Audit         Handler
	RBAC          Handler
}

type Config struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	AllowedOrigins   []string
	Timeout          time.Duration
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
}

const (
	apiPrefix    = "/api/v1"
	eventsPrefix = apiPrefix + "/notifications/events"
)

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, m *metrics.Metrics, config Config) *Router {
	validator.Register()
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
	}

	// Core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(
		middleware.Timeout(middleware.TimeoutConfig{
			Duration:     config.Timeout,
			SkipPrefixes: []string{eventsPrefix},
		}),
		middleware.CORS(config.AllowedOrigins),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group(apiPrefix)

	// Health check endpoints
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}

	// Public routes
	if r.handlers.Auth != nil {
		r.handlers.Auth.RegisterRoutes(api)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	if r.handlers.Auth != nil {
		r.handlers.Auth.RegisterProtectedRoutes(rg)
	}
	if r.handlers.Notifications != nil {
		r.handlers.Notifications.RegisterRoutes(rg)
	}
	if r.handlers.Approvals != nil {
		r.handlers.Approvals.RegisterRoutes(rg)
	}
	for _, h := range r.handlers.Resources {
		h.RegisterRoutes(rg)
	}
	if r.handlers.RBAC != nil {
		r.handlers.RBAC.RegisterRoutes(rg)
	}
	if r.handlers.Audit != nil {
		audited := rg.Group("")
		audited.Use(r.auth.RequirePermission(model.PermissionAuditRead))
		r.handlers.Audit.RegisterRoutes(audited)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
