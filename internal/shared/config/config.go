package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Inbound shared-secret auth
	Auth AuthConfig

	// Upstream catalog API
	Catalog CatalogConfig

	// Payment processor
	Checkout CheckoutConfig

	// Listing and reservation policy
	Policy PolicyConfig

	// Redis configuration
	Redis RedisConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Kafka checkout notifications
	Kafka KafkaConfig

	// Logging
	LogLevel string
}

// AuthConfig holds the static API key callers must present
type AuthConfig struct {
	APIKey    string
	HeaderKey string
}

// CatalogConfig holds the upstream catalog API configuration
type CatalogConfig struct {
	BaseURL         string
	ClientID        string
	ClientSecret    string
	EventType       string
	ListTimeout     time.Duration
	LookupTimeout   time.Duration
	PageSize        int
	AllPageSize     int
	DefaultLocation string
}

// CheckoutConfig holds the payment processor configuration
type CheckoutConfig struct {
	BaseURL          string
	SecretKey        string
	WebhookSecret    string
	WebhookTolerance time.Duration
	Currency         string
	SuccessURL       string
	CancelURL        string
	Timeout          time.Duration
}

// PolicyConfig selects one pricing/availability/checkout variant per deployment
type PolicyConfig struct {
	Availability           string // "strict" or "permissive"
	ValidityGate           bool
	PermissiveDefaultSeats int
	PriceSource            string // "upstream" or "caller"
	CheckoutFailureIsFatal bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled             bool          `json:"enabled"`
	WindowDuration      time.Duration `json:"window_duration"`
	DefaultRequests     int           `json:"default_requests"`
	PublicRequests      int           `json:"public_requests"`
	ReservationRequests int           `json:"reservation_requests"`
	WebhookRequests     int           `json:"webhook_requests"`
	HealthRequests      int           `json:"health_requests"`
	WhitelistedIPs      []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds the checkout notification producer configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	Topic    string
	RetryMax int
	Timeout  time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		Auth: AuthConfig{
			APIKey:    getEnv("API_KEY", ""),
			HeaderKey: getEnv("API_KEY_HEADER", "X-API-Key"),
		},

		Catalog: CatalogConfig{
			BaseURL:         getEnv("CATALOG_BASE_URL", "https://api.seatgeek.com/2"),
			ClientID:        getEnv("CATALOG_CLIENT_ID", ""),
			ClientSecret:    getEnv("CATALOG_CLIENT_SECRET", ""),
			EventType:       getEnv("CATALOG_EVENT_TYPE", "concert"),
			ListTimeout:     getDurationEnv("CATALOG_LIST_TIMEOUT", 10*time.Second),
			LookupTimeout:   getDurationEnv("CATALOG_LOOKUP_TIMEOUT", 5*time.Second),
			PageSize:        getIntEnv("CATALOG_PAGE_SIZE", 25),
			AllPageSize:     getIntEnv("CATALOG_ALL_PAGE_SIZE", 100),
			DefaultLocation: getEnv("CATALOG_DEFAULT_LOCATION", ""),
		},

		Checkout: CheckoutConfig{
			BaseURL:          getEnv("CHECKOUT_BASE_URL", "https://api.stripe.com"),
			SecretKey:        getEnv("CHECKOUT_SECRET_KEY", ""),
			WebhookSecret:    getEnv("CHECKOUT_WEBHOOK_SECRET", ""),
			WebhookTolerance: getDurationEnv("CHECKOUT_WEBHOOK_TOLERANCE", 5*time.Minute),
			Currency:         strings.ToLower(getEnv("CHECKOUT_CURRENCY", "usd")),
			SuccessURL:       getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success"),
			CancelURL:        getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"),
			Timeout:          getDurationEnv("CHECKOUT_TIMEOUT", 10*time.Second),
		},

		Policy: PolicyConfig{
			Availability:           strings.ToLower(getEnv("AVAILABILITY_POLICY", "strict")),
			ValidityGate:           getBoolEnv("VALIDITY_GATE_ENABLED", false),
			PermissiveDefaultSeats: getIntEnv("PERMISSIVE_DEFAULT_SEATS", 100),
			PriceSource:            strings.ToLower(getEnv("PRICE_SOURCE", "upstream")),
			CheckoutFailureIsFatal: getBoolEnv("CHECKOUT_FAILURE_FATAL", false),
		},

		// Redis configuration
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:             getBoolEnv("RATE_LIMIT_ENABLED", false),
			WindowDuration:      getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:     getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:      getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			ReservationRequests: getIntEnv("RATE_LIMIT_RESERVATION_REQUESTS", 20),
			WebhookRequests:     getIntEnv("RATE_LIMIT_WEBHOOK_REQUESTS", 300),
			HealthRequests:      getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 600),
			WhitelistedIPs:      getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		Kafka: KafkaConfig{
			Enabled:  getBoolEnv("KAFKA_ENABLED", false),
			Brokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:    getEnv("KAFKA_CHECKOUT_TOPIC", "checkout-events"),
			RetryMax: getIntEnv("KAFKA_RETRY_MAX", 3),
			Timeout:  getDurationEnv("KAFKA_TIMEOUT", 10*time.Second),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Build composite values
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// Validate reports policy values that no component understands. Missing
// credentials are not checked here: they surface per operation as
// configuration errors.
func (c *Config) Validate() error {
	switch c.Policy.Availability {
	case "strict", "permissive":
	default:
		return fmt.Errorf("unknown AVAILABILITY_POLICY %q", c.Policy.Availability)
	}
	switch c.Policy.PriceSource {
	case "upstream", "caller":
	default:
		return fmt.Errorf("unknown PRICE_SOURCE %q", c.Policy.PriceSource)
	}
	if c.Policy.PermissiveDefaultSeats < 0 {
		return fmt.Errorf("PERMISSIVE_DEFAULT_SEATS must not be negative")
	}
	if c.Catalog.PageSize <= 0 || c.Catalog.AllPageSize <= 0 {
		return fmt.Errorf("catalog page sizes must be positive")
	}
	return nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
