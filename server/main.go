package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tixbridge/api/routes"
	"tixbridge/internal/notifications"
	"tixbridge/internal/shared/config"
	"tixbridge/internal/shared/database"
	"tixbridge/internal/shared/middleware"
	"tixbridge/pkg/logger"
	"tixbridge/pkg/ratelimit"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		appLogger.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Level can only be applied once the env is loaded
	appLogger = logger.NewWithLevel(cfg.LogLevel)
	logger.SetDefault(appLogger)

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize Redis (rate limiting and health)
	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("Redis unavailable, continuing without it", slog.Any("error", err))
		db = database.NewWithRedis(nil, appLogger)
	}
	defer db.Close()

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.GetRedis() != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedis(), &ratelimit.Config{
			Enabled:             cfg.RateLimit.Enabled,
			WindowDuration:      cfg.RateLimit.WindowDuration,
			DefaultRequests:     cfg.RateLimit.DefaultRequests,
			PublicRequests:      cfg.RateLimit.PublicRequests,
			ReservationRequests: cfg.RateLimit.ReservationRequests,
			WebhookRequests:     cfg.RateLimit.WebhookRequests,
			HealthRequests:      cfg.RateLimit.HealthRequests,
			WhitelistedIPs:      cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Checkout notifications
	publisher := newPublisher(cfg, appLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing notification publisher", slog.Any("error", err))
		}
	}()

	router := setupRouter(cfg, db, rateLimiter, publisher, appLogger)

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_base", fmt.Sprintf("http://localhost:%s%s", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("availability_policy", cfg.Policy.Availability),
			slog.String("price_source", cfg.Policy.PriceSource),
			slog.Bool("checkout_failure_fatal", cfg.Policy.CheckoutFailureIsFatal),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// newPublisher falls back to a no-op publisher when Kafka is off or unreachable
func newPublisher(cfg *config.Config, appLogger *logger.Logger) notifications.Publisher {
	if !cfg.Kafka.Enabled {
		appLogger.Info("Kafka disabled, checkout notifications will not be published")
		return notifications.NoopPublisher{}
	}

	kafkaConfig := notifications.DefaultKafkaProducerConfig()
	kafkaConfig.Brokers = cfg.Kafka.Brokers
	kafkaConfig.Topic = cfg.Kafka.Topic
	kafkaConfig.RetryMax = cfg.Kafka.RetryMax
	kafkaConfig.Timeout = cfg.Kafka.Timeout

	publisher, err := notifications.NewKafkaPublisher(kafkaConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize Kafka publisher, continuing without it", slog.Any("error", err))
		return notifications.NoopPublisher{}
	}
	appLogger.Info("Kafka checkout publisher initialized",
		slog.Any("brokers", kafkaConfig.Brokers),
		slog.String("topic", kafkaConfig.Topic),
	)
	return publisher
}

func setupRouter(cfg *config.Config, db *database.DB, rateLimiter *ratelimit.RateLimiter, publisher notifications.Publisher, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	// Request ids, request logging, panic recovery
	engine.Use(middleware.RequestID(), middleware.RequestLogger(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", cfg.Auth.HeaderKey, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter := routes.NewRouter(cfg, db, appLogger, routes.Dependencies{Publisher: publisher})
	appRouter.SetupRoutes(engine)

	return engine
}
