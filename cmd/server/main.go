package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/olekh/ledgerd/internal/adapter/http"
	"github.com/olekh/ledgerd/internal/adapter/http/handler"
	"github.com/olekh/ledgerd/internal/adapter/http/middleware"
	postgresRepo "github.com/olekh/ledgerd/internal/adapter/repository/postgres"
	redisRepo "github.com/olekh/ledgerd/internal/adapter/repository/redis"
	"github.com/olekh/ledgerd/internal/infrastructure/auth"
	"github.com/olekh/ledgerd/internal/infrastructure/config"
	"github.com/olekh/ledgerd/internal/infrastructure/eventpublisher"
	"github.com/olekh/ledgerd/internal/infrastructure/logger"
	"github.com/olekh/ledgerd/internal/infrastructure/metrics"
	"github.com/olekh/ledgerd/internal/infrastructure/postgres"
	"github.com/olekh/ledgerd/internal/infrastructure/redis"
	"github.com/olekh/ledgerd/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	entryStore := postgresRepo.NewEntryStore(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	publisher := eventpublisher.NewLogPublisher(log.Logger)

	appMetrics := metrics.New()

	// Initialize use cases
	resolver := usecase.NewBalanceResolver(entryStore)
	transferUC := usecase.NewTransferUseCase(entryStore, resolver, publisher, usecase.SystemClock{}, log.Logger).WithMetrics(appMetrics)
	queryUC := usecase.NewQueryUseCase(entryStore, resolver, log.Logger, cfg.FanOutWorkers, cfg.FanOutTimeout).WithMetrics(appMetrics)
	analyticsUC := usecase.NewAnalyticsUseCase(queryUC, cache, cfg.StatsCacheTTL, log.Logger).WithMetrics(appMetrics)

	// Initialize handlers
	transactionHandler := handler.NewTransactionHandler(transferUC, queryUC)
	balanceHandler := handler.NewBalanceHandler(queryUC)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Optional JWT authentication
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("jwt authentication enabled")
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler: transactionHandler,
		BalanceHandler:     balanceHandler,
		AnalyticsHandler:   analyticsHandler,
		HealthHandler:      healthHandler,
		Logging:            middleware.NewLoggingMiddleware(log.Logger),
		Metrics:            middleware.NewMetricsMiddleware(appMetrics),
		RateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		JWTManager:         jwtManager,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
