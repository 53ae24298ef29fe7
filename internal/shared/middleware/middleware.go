package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tixbridge/internal/shared/apperr"
	"tixbridge/internal/shared/config"
	"tixbridge/internal/shared/utils/response"
	"tixbridge/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// APIKeyAuth requires the configured shared secret in the API key header. An
// unset key is a server misconfiguration and is reported as such, never as a
// caller error.
func APIKeyAuth(cfg config.AuthConfig, log *logger.Logger) gin.HandlerFunc {
	header := cfg.HeaderKey
	if header == "" {
		header = "X-API-Key"
	}
	expected := []byte(cfg.APIKey)

	return func(c *gin.Context) {
		if len(expected) == 0 {
			log.ErrorContext(c.Request.Context(), "API key is not configured")
			response.RespondError(c, apperr.Configuration("middleware.APIKeyAuth", "API key is not configured"))
			c.Abort()
			return
		}

		provided := c.GetHeader(header)
		if provided == "" {
			log.LogAuthFailure(c.Request.Context(), "missing api key", c.ClientIP())
			response.RespondError(c, apperr.New(apperr.KindUnauthorized, "middleware.APIKeyAuth", header+" header is required"))
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			log.LogAuthFailure(c.Request.Context(), "invalid api key", c.ClientIP())
			response.RespondError(c, apperr.New(apperr.KindUnauthorized, "middleware.APIKeyAuth", "Invalid API key"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequestID propagates or assigns a request id
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// RequestLogger logs every request once it has been served
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if len(c.Errors) > 0 && c.Writer.Status() >= http.StatusInternalServerError {
			log.LogHTTPError(c, c.Errors.Last().Err, c.Writer.Status())
		}
		log.LogHTTPRequest(c, time.Since(start))
	}
}
