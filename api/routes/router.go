// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tixbridge/internal/catalog"
	"tixbridge/internal/checkout"
	"tixbridge/internal/notifications"
	"tixbridge/internal/reservations"
	"tixbridge/internal/shared/config"
	"tixbridge/internal/shared/database"
	"tixbridge/internal/shared/middleware"
	"tixbridge/internal/shows"
	"tixbridge/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	log       *logger.Logger
	catalog   catalog.Client
	bridge    checkout.Bridge
	publisher notifications.Publisher

	showService shows.Service // shared by the show and reservation routes
}

// Dependencies are the outbound collaborators; nil fields are built from config
type Dependencies struct {
	Catalog   catalog.Client
	Bridge    checkout.Bridge
	Publisher notifications.Publisher
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, log *logger.Logger, deps Dependencies) *Router {
	if deps.Catalog == nil {
		deps.Catalog = catalog.NewHTTPClient(catalog.Config{
			BaseURL:       cfg.Catalog.BaseURL,
			ClientID:      cfg.Catalog.ClientID,
			ClientSecret:  cfg.Catalog.ClientSecret,
			ListTimeout:   cfg.Catalog.ListTimeout,
			LookupTimeout: cfg.Catalog.LookupTimeout,
		}, nil)
	}
	if deps.Bridge == nil {
		deps.Bridge = checkout.NewStripeBridge(checkout.StripeConfig{
			BaseURL:    cfg.Checkout.BaseURL,
			SecretKey:  cfg.Checkout.SecretKey,
			Currency:   cfg.Checkout.Currency,
			SuccessURL: cfg.Checkout.SuccessURL,
			CancelURL:  cfg.Checkout.CancelURL,
			Timeout:    cfg.Checkout.Timeout,
		}, nil, log)
	}
	if deps.Publisher == nil {
		deps.Publisher = notifications.NoopPublisher{}
	}
	return &Router{
		config:    cfg,
		db:        db,
		log:       log,
		catalog:   deps.Catalog,
		bridge:    deps.Bridge,
		publisher: deps.Publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	apiKey := middleware.APIKeyAuth(r.config.Auth, r.log)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupShowRoutes(api, apiKey)
		r.setupReservationRoutes(api, apiKey)

		// Signed by the processor, so no API key
		r.setupWebhookRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "tixbridge",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "tixbridge",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "operational",
			"api_version":    r.config.APIVersion,
			"availability":   r.config.Policy.Availability,
			"price_source":   r.config.Policy.PriceSource,
			"validity_gate":  r.config.Policy.ValidityGate,
			"checkout_fatal": r.config.Policy.CheckoutFailureIsFatal,
			"kafka_enabled":  r.config.Kafka.Enabled,
			"redis_enabled":  r.db.GetRedis() != nil,
			"timestamp":      time.Now(),
		})
	})
}

// setupShowRoutes configures listing routes
func (r *Router) setupShowRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	r.showService = shows.NewService(r.catalog, shows.PolicyFromConfig(r.config.Policy), shows.ServiceConfig{
		EventType:       r.config.Catalog.EventType,
		PageSize:        r.config.Catalog.PageSize,
		AllPageSize:     r.config.Catalog.AllPageSize,
		DefaultLocation: r.config.Catalog.DefaultLocation,
	}, r.log)

	shows.SetupShowRoutes(rg, shows.NewController(r.showService), guards...)
}

// setupReservationRoutes configures reservation routes; needs the show service
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	reservationService := reservations.NewService(r.showService, r.bridge, reservations.NewIDGenerator(), reservations.ServiceConfig{
		PriceSource:            reservations.PriceSource(r.config.Policy.PriceSource),
		CheckoutFailureIsFatal: r.config.Policy.CheckoutFailureIsFatal,
		SuccessURL:             r.config.Checkout.SuccessURL,
		CancelURL:              r.config.Checkout.CancelURL,
	}, r.log)

	reservations.NewRouter(reservations.NewController(reservationService)).SetupRoutes(rg, guards...)
}

// setupWebhookRoutes configures the payment processor callback
func (r *Router) setupWebhookRoutes(rg *gin.RouterGroup) {
	verifier := checkout.NewWebhookVerifier(r.config.Checkout.WebhookSecret, r.config.Checkout.WebhookTolerance)
	handler := checkout.NewWebhookHandler(verifier, r.publisher, r.log)

	checkout.SetupWebhookRoutes(rg, checkout.NewController(handler))
}
