package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	return NewWithLevel(os.Getenv("LOG_LEVEL"))
}

// NewWithLevel creates a logger writing to stdout at the given level
func NewWithLevel(levelStr string) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewWithHandler wraps an arbitrary handler, mostly for tests
func NewWithHandler(handler slog.Handler) *Logger {
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewWithHandler(slog.NewTextHandler(io.Discard, nil))
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithComponent tags every record with the emitting component
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("component", component)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
		slog.String("request_id", c.GetString("request_id")),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
		slog.String("request_id", c.GetString("request_id")),
	)
}

// Upstream logging methods

// LogUpstreamCall logs one call to an external API. params must not carry credentials.
func (l *Logger) LogUpstreamCall(ctx context.Context, call string, params map[string]string, count int, duration time.Duration, err error) {
	args := []any{
		slog.String("call", call),
		slog.Any("params", params),
		slog.Int("result_count", count),
		slog.Duration("duration", duration),
	}
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
		l.Logger.WarnContext(ctx, "Upstream Call Failed", args...)
		return
	}
	l.Logger.InfoContext(ctx, "Upstream Call", args...)
}

// Business logic logging methods

// LogAggregate logs the outcome of a listing aggregation
func (l *Logger) LogAggregate(ctx context.Context, location string, fetchAll bool, fetched, rejected, unique int) {
	l.Logger.InfoContext(ctx,
		"Shows Aggregated",
		slog.String("location", location),
		slog.Bool("fetch_all", fetchAll),
		slog.Int("fetched", fetched),
		slog.Int("rejected", rejected),
		slog.Int("unique", unique),
	)
}

// LogReservationCreated logs when a reservation is synthesized
func (l *Logger) LogReservationCreated(ctx context.Context, reservationID, showID string, quantity int, total float64, checkout bool) {
	l.Logger.InfoContext(ctx,
		"Reservation Created",
		slog.String("reservation_id", reservationID),
		slog.String("show_id", showID),
		slog.Int("quantity", quantity),
		slog.Float64("total_price", total),
		slog.Bool("checkout_created", checkout),
	)
}

// LogCheckoutDegraded logs a swallowed checkout failure
func (l *Logger) LogCheckoutDegraded(ctx context.Context, reservationID string, err error) {
	l.Logger.WarnContext(ctx,
		"Checkout Unavailable, Reservation Returned Without Session",
		slog.String("reservation_id", reservationID),
		slog.String("error", err.Error()),
	)
}

// LogWebhookEvent logs a verified payment processor event
func (l *Logger) LogWebhookEvent(ctx context.Context, eventID, eventType, sessionID string, handled bool) {
	l.Logger.InfoContext(ctx,
		"Checkout Webhook Event",
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.String("session_id", sessionID),
		slog.Bool("handled", handled),
	)
}

// Security logging methods

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
