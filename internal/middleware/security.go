package middleware

import (
	"net/http"
	"strings"

	"shoppinglist-api/internal/logging"
	"shoppinglist-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// SecurityConfig holds security middleware configuration
type SecurityConfig struct {
	MaxRequestBodySize int64    // Maximum request body size in bytes
	TrustedProxies     []string // Proxies whose forwarding headers are trusted for the client IP
}

// NewSecurityConfigFromEnv creates security config from environment variables
func NewSecurityConfigFromEnv() *SecurityConfig {
	return &SecurityConfig{
		MaxRequestBodySize: getEnvInt64("MAX_REQUEST_BODY_SIZE", 64*1024),
		TrustedProxies:     parseCommaSeparated(getEnv("TRUSTED_PROXIES", "")),
	}
}

// SecurityHeaders adds security-related HTTP headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Referrer-Policy", "no-referrer")
		// views change on every write
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}

// RequestSizeLimit limits the size of incoming request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			logging.Logger.WithFields(logrus.Fields{
				"client_ip":      c.ClientIP(),
				"content_length": c.Request.ContentLength,
				"max_size":       maxSize,
			}).Warn("Request body too large")

			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Code:    "REQUEST_TOO_LARGE",
				Message: "Request body too large",
				Details: map[string]interface{}{"maxSizeBytes": maxSize},
			})
			return
		}

		// chunked bodies carry no length up front
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// ErrorSanitizer logs errors attached to the context and hides their details from clients
func ErrorSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()

		logging.Logger.WithFields(logrus.Fields{
			"client_ip":  c.ClientIP(),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": GetRequestID(c),
			"error":      err.Error(),
		}).Error("Request error")

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Code:    "INTERNAL_ERROR",
				Message: "An internal error occurred. Please try again later.",
			})
		}
	}
}

// ValidateDocumentID reports whether id is a store-assigned document id
func ValidateDocumentID(id string) bool {
	_, err := ulid.ParseStrict(strings.ToUpper(id))
	return err == nil
}

// DocumentIDValidator rejects requests whose path parameters are not document ids
func DocumentIDValidator(params ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, param := range params {
			value := c.Param(param)
			if value == "" || ValidateDocumentID(value) {
				continue
			}

			logging.Logger.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(),
				"path":      c.Request.URL.Path,
				"param":     param,
				"value":     value,
			}).Warn("Invalid document ID format")

			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
				Code:    "INVALID_ID",
				Message: "Invalid document ID format",
				Details: map[string]interface{}{"field": param},
			})
			return
		}
		c.Next()
	}
}
