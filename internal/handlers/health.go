package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"shoppinglist-api/internal/realtime"
	"shoppinglist-api/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Version is reported by the detailed health check; set with -ldflags at build time
var Version = "dev"

// HealthHandler handles health check requests
type HealthHandler struct {
	store     store.Store
	directory *realtime.Directory
	db        *gorm.DB // nil when the store is not database backed
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(s store.Store, directory *realtime.Directory, db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		store:     s,
		directory: directory,
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// BasicHealth reports that the process is serving requests
// @Summary Basic health check
// @Description Returns a simple health status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// DetailedHealth provides store, sync and system health information
// @Summary Detailed health check
// @Description Returns store, list sync, database and migration status with uptime and system info
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/detailed [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	checks := make(map[string]HealthCheck)
	overallStatus := "healthy"

	storeCheck := h.checkStore()
	checks["store"] = storeCheck
	if storeCheck.Status != "healthy" {
		overallStatus = "unhealthy"
	}

	// a failing subscription keeps serving its last view
	syncCheck := h.checkSync()
	checks["sync"] = syncCheck
	if syncCheck.Status != "healthy" && overallStatus == "healthy" {
		overallStatus = "degraded"
	}

	if h.db != nil {
		dbCheck := h.checkDatabase()
		checks["database"] = dbCheck
		if dbCheck.Status != "healthy" {
			overallStatus = "unhealthy"
		}
		checks["migrations"] = h.checkMigrations()
	}

	// System information
	checks["system"] = h.getSystemInfo()

	// Calculate uptime
	uptime := time.Since(h.startTime)

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    formatDuration(uptime),
		Version:   Version,
		Checks:    checks,
	}

	// Return 503 if unhealthy
	if overallStatus == "unhealthy" {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessProbe checks if the application is ready to serve traffic
// @Summary Readiness probe
// @Description Ready once the store answers and the list directory has synced
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	storeCheck := h.checkStore()
	if storeCheck.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"reason":  "store_unavailable",
			"message": storeCheck.Message,
		})
		return
	}

	if h.directory == nil || !h.directory.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"reason":  "sync_pending",
			"message": "List directory has not received its first snapshot",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessProbe checks if the application is alive
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// checkStore pings the document store
func (h *HealthHandler) checkStore() HealthCheck {
	if h.store == nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "Document store not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "Document store ping failed",
			Details: map[string]interface{}{
				"error": err.Error(),
			},
		}
	}

	return HealthCheck{
		Status:  "healthy",
		Message: "Document store is reachable",
	}
}

// checkSync reports the list directory subscription state
func (h *HealthHandler) checkSync() HealthCheck {
	if h.directory == nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "List directory not initialized",
		}
	}

	details := map[string]interface{}{
		"ready": h.directory.Ready(),
		"lists": len(h.directory.View()),
	}
	if err := h.directory.LastError(); err != nil {
		details["error"] = err.Error()
		return HealthCheck{
			Status:  "warning",
			Message: "List directory read failed; serving the last view",
			Details: details,
		}
	}
	if !h.directory.Ready() {
		return HealthCheck{
			Status:  "warning",
			Message: "Waiting for the first snapshot",
			Details: details,
		}
	}

	return HealthCheck{
		Status:  "healthy",
		Message: "List directory is in sync",
		Details: details,
	}
}

// checkDatabase verifies database connectivity
func (h *HealthHandler) checkDatabase() HealthCheck {
	if h.db == nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "Database connection not initialized",
		}
	}

	// Get underlying SQL database
	sqlDB, err := h.db.DB()
	if err != nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "Failed to get database instance",
		}
	}

	// Ping database with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "Database ping failed",
			Details: map[string]interface{}{
				"error": err.Error(),
			},
		}
	}

	// Get database stats
	stats := sqlDB.Stats()

	return HealthCheck{
		Status:  "healthy",
		Message: "Database connection is healthy",
		Details: map[string]interface{}{
			"open_connections":    stats.OpenConnections,
			"in_use":              stats.InUse,
			"idle":                stats.Idle,
			"wait_count":          stats.WaitCount,
			"wait_duration_ms":    stats.WaitDuration.Milliseconds(),
			"max_idle_closed":     stats.MaxIdleClosed,
			"max_lifetime_closed": stats.MaxLifetimeClosed,
		},
	}
}

// checkMigrations verifies migration status
func (h *HealthHandler) checkMigrations() HealthCheck {
	if h.db == nil {
		return HealthCheck{
			Status:  "unknown",
			Message: "Database not available",
		}
	}

	// golang-migrate only manages postgres; other drivers use AutoMigrate
	if h.db.Dialector.Name() != "postgres" {
		return HealthCheck{
			Status:  "info",
			Message: "Schema managed by AutoMigrate",
			Details: map[string]interface{}{"driver": h.db.Dialector.Name()},
		}
	}

	// Check if schema_migrations table exists
	var exists bool
	err := h.db.Raw(`
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'schema_migrations'
		)
	`).Scan(&exists).Error

	if err != nil || !exists {
		return HealthCheck{
			Status:  "unknown",
			Message: "Migration table not found",
		}
	}

	// Get current migration version
	var version uint
	var dirty bool
	err = h.db.Raw(`
		SELECT version, dirty
		FROM schema_migrations
		LIMIT 1
	`).Row().Scan(&version, &dirty)

	if err != nil {
		return HealthCheck{
			Status:  "unknown",
			Message: "Could not read migration status",
		}
	}

	status := "healthy"
	message := "Migrations are up to date"
	if dirty {
		status = "warning"
		message = "Database is in dirty state - manual intervention required"
	}

	return HealthCheck{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"version": version,
			"dirty":   dirty,
		},
	}
}

// getSystemInfo returns system information
func (h *HealthHandler) getSystemInfo() HealthCheck {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return HealthCheck{
		Status:  "info",
		Message: "System information",
		Details: map[string]interface{}{
			"goroutines":      runtime.NumGoroutine(),
			"memory_alloc_mb": m.Alloc / 1024 / 1024,
			"memory_sys_mb":   m.Sys / 1024 / 1024,
			"num_gc":          m.NumGC,
			"go_version":      runtime.Version(),
		},
	}
}

// formatDuration formats a duration into a human-readable string
func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
