package middleware

import (
	"net/http"
	"strings"
	"time"

	"shoppinglist-api/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID assigns every request an id, reusing a well-formed incoming one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "" outside of it
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger logs every request once it completed, at a level derived from the status
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		logEntry := logging.Logger.WithFields(logrus.Fields{
			"client_ip": c.ClientIP(),
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"query":     c.Request.URL.RawQuery,
		})
		if userAgent := c.GetHeader("User-Agent"); userAgent != "" {
			logEntry = logEntry.WithField("user_agent", userAgent)
		}
		watch := strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
		if watch {
			logEntry = logEntry.WithField("websocket", true)
		}

		c.Next()

		statusCode := c.Writer.Status()
		logEntry = logEntry.WithFields(logrus.Fields{
			"status":        statusCode,
			"latency_ms":    time.Since(startTime).Milliseconds(),
			"response_size": c.Writer.Size(),
		})
		if id := GetRequestID(c); id != "" {
			logEntry = logEntry.WithField("request_id", id)
		}
		if len(c.Errors) > 0 {
			logEntry = logEntry.WithField("errors", c.Errors.String())
		}
		if statusCode == http.StatusTooManyRequests {
			logEntry = logEntry.WithField("rate_limited", true)
		}

		switch {
		case statusCode >= 500:
			logEntry.Error("Server error")
		case statusCode >= 400:
			logEntry.Warn("Client error")
		case watch:
			logEntry.Info("Watch stream ended")
		case statusCode >= 300:
			logEntry.Info("Redirect")
		default:
			logEntry.Info("Request completed")
		}
	}
}
