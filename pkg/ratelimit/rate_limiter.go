package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault     RateLimitType = "default"
	RateLimitTypePublic      RateLimitType = "public"
	RateLimitTypeReservation RateLimitType = "reservation"
	RateLimitTypeWebhook     RateLimitType = "webhook"
	RateLimitTypeHealth      RateLimitType = "health"
)

type Config struct {
	Enabled             bool          `json:"enabled"`
	WindowDuration      time.Duration `json:"window_duration"`
	DefaultRequests     int           `json:"default_requests"`
	PublicRequests      int           `json:"public_requests"`
	ReservationRequests int           `json:"reservation_requests"`
	WebhookRequests     int           `json:"webhook_requests"`
	HealthRequests      int           `json:"health_requests"`
	WhitelistedIPs      []string      `json:"whitelisted_ips"`
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client    *redis.Client
	config    *Config
	whitelist map[string]struct{}
	now       func() time.Time
}

// slidingWindow trims the window, then admits the request if there is room.
// Returns {allowed, count, remaining}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current_count = redis.call('ZCARD', key)
	if current_count >= limit then
		redis.call('PEXPIRE', key, window_ms)
		return {0, current_count, 0}
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window_ms)

	return {1, current_count + 1, limit - current_count - 1}
`)

func NewRateLimiter(client *redis.Client, config *Config) *RateLimiter {
	if config.WindowDuration <= 0 {
		config.WindowDuration = time.Minute
	}
	whitelist := make(map[string]struct{}, len(config.WhitelistedIPs))
	for _, ip := range config.WhitelistedIPs {
		whitelist[ip] = struct{}{}
	}
	return &RateLimiter{
		client:    client,
		config:    config,
		whitelist: whitelist,
		now:       time.Now,
	}
}

// IsAllowed checks whether clientIP may make another request of limitType
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)

	if !r.config.Enabled || r.client == nil || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: r.now().Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := fmt.Sprintf("tixbridge:ratelimit:%s:%s", clientIP, limitType)
	return r.checkLimit(ctx, key, limit)
}

// checkLimit runs the sliding window check in one round trip
func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := r.now()
	windowStart := now.Add(-r.config.WindowDuration)

	// every request gets its own member so same-millisecond hits are all counted
	result, err := slidingWindow.Run(ctx, r.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		limit,
		r.config.WindowDuration.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("unexpected redis response of length %d", len(result))
	}

	return &Result{
		Allowed:   result[0] == 1,
		Limit:     limit,
		Remaining: int(result[2]),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeReservation:
		return r.config.ReservationRequests
	case RateLimitTypeWebhook:
		return r.config.WebhookRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	_, ok := r.whitelist[ip]
	return ok
}
