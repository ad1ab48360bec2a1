package middleware

import (
	"net/http"
	"time"

	"shoppinglist-api/internal/logging"
	"shoppinglist-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int64
	// WatchesPerMin caps websocket watch streams opened per client
	WatchesPerMin int64
}

// NewRateLimitConfigFromEnv creates rate limit config from environment variables
func NewRateLimitConfigFromEnv() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerMin: getEnvInt64("RATE_LIMIT_REQUESTS_PER_MIN", 120),
		WatchesPerMin:  getEnvInt64("RATE_LIMIT_WATCHES_PER_MIN", 20),
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}

// newRateLimiter builds a per-client-IP limiter. limitType tags the log entry
// and the response.
func newRateLimiter(limit int64, limitType, message string) gin.HandlerFunc {
	if limit < 1 {
		limit = 1
	}
	rate := limiter.Rate{Period: time.Minute, Limit: limit}
	instance := limiter.New(memory.NewStore(), rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		logging.Logger.WithFields(logrus.Fields{
			"client_ip":     c.ClientIP(),
			"path":          c.Request.URL.Path,
			"method":        c.Request.Method,
			"rate_limited":  true,
			"limit_type":    limitType,
			"limit_per_min": rate.Limit,
		}).Warn("Rate limit exceeded")

		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
			Code:    "RATE_LIMIT_EXCEEDED",
			Message: message,
			Details: map[string]interface{}{
				"limitType":  limitType,
				"limit":      rate.Limit,
				"retryAfter": int(rate.Period.Seconds()),
			},
		})
	}))
}

// GlobalRateLimiter limits all requests of a client
func GlobalRateLimiter(config *RateLimitConfig) gin.HandlerFunc {
	if !config.Enabled {
		logging.Logger.Info("Rate limiting is disabled")
		return passThrough
	}

	logging.Logger.Infof("Rate limiting enabled: %d requests per minute", config.RequestsPerMin)
	return newRateLimiter(config.RequestsPerMin, "global", "Too many requests. Please try again later.")
}

// MethodRateLimiter caps mutations at half the global budget. Reads are bounded by
// GlobalRateLimiter alone.
func MethodRateLimiter(config *RateLimitConfig) gin.HandlerFunc {
	if !config.Enabled {
		return passThrough
	}

	write := newRateLimiter(config.RequestsPerMin/2, "write", "Too many write requests. Please try again later.")

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			write(c)
		}
	}
}

// WatchRateLimiter limits how often a client may open watch streams
func WatchRateLimiter(config *RateLimitConfig) gin.HandlerFunc {
	if !config.Enabled {
		return passThrough
	}
	return newRateLimiter(config.WatchesPerMin, "watch", "Too many watch streams opened. Please try again later.")
}
