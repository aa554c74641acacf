package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olekh/ledgerd/internal/adapter/http/handler"
	"github.com/olekh/ledgerd/internal/adapter/http/middleware"
	"github.com/olekh/ledgerd/internal/infrastructure/auth"
	"github.com/olekh/ledgerd/internal/usecase"
)

// RouterConfig holds dependencies for the router. Optional middleware
// collaborators may be nil.
type RouterConfig struct {
	TransactionHandler *handler.TransactionHandler
	BalanceHandler     *handler.BalanceHandler
	AnalyticsHandler   *handler.AnalyticsHandler
	HealthHandler      *handler.HealthHandler

	Logging     *middleware.LoggingMiddleware
	Metrics     *middleware.MetricsMiddleware
	RateLimiter *middleware.RateLimiter

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	JWTManager       *auth.JWTManager
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/{id}", cfg.TransactionHandler.Get)
		})

		r.Get("/balances", cfg.BalanceHandler.List)
		r.Get("/stats", cfg.AnalyticsHandler.Stats)
		r.Get("/trends", cfg.AnalyticsHandler.Trends)
	})

	return r
}
