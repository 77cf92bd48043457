package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is satisfied by *database.DB.
type HealthChecker interface {
	Health(ctx context.Context) error
	PoolStats() map[string]interface{}
	Driver() string
}

// Health reports database reachability and connection stats
func Health(db HealthChecker, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"version": version,
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"version":  version,
			"database": db.Driver(),
			"pool":     db.PoolStats(),
		})
	}
}

// Version reports the build version
func Version(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": version,
			"service": "indoor-jungle",
		})
	}
}
