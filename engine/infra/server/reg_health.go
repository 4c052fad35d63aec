package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rosterhq/roster/pkg/logger"
	"github.com/rosterhq/roster/pkg/version"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// healthChecker reports whether a dependency can serve traffic.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Health endpoint
//
//	@Summary      Get server health
//	@Description  Returns overall service health including database readiness
//	@Tags         health,diagnostics
//	@Accept       json
//	@Produce      json
//	@Success      200 {object} map[string]interface{} "Service is healthy"
//	@Failure      503 {object} map[string]interface{} "Service is not ready"
//	@Router       /api/v0/health [get]
func CreateHealthHandler(db healthChecker, startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		dbStatus := gin.H{"ready": true}
		ready := true
		if db == nil {
			ready = false
			dbStatus = gin.H{"ready": false, "error": "database not configured"}
		} else if err := db.HealthCheck(ctx); err != nil {
			logger.FromContext(ctx).Warn("Health check failed on database", "error", err)
			ready = false
			dbStatus = gin.H{"ready": false, "error": err.Error()}
		}

		status := statusHealthy
		statusCode := http.StatusOK
		if !ready {
			status = statusDegraded
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, gin.H{
			"data": gin.H{
				"status":   status,
				"ready":    ready,
				"version":  version.Get().Version,
				"uptime":   time.Since(startedAt).Round(time.Second).String(),
				"database": dbStatus,
			},
			"message": "Success",
		})
	}
}
