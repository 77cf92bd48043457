package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DemoOnly restricts an endpoint to servers running in demo mode
func DemoOnly(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "This endpoint is only available in demo mode",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
