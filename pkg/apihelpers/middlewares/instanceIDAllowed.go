package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// IsInstanceIDAllowed rejects requests whose instanceID path param is not in
// the configured instance list.
func IsInstanceIDAllowed(allowedInstanceIDs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		instanceID := c.Param("instanceID")
		for _, id := range allowedInstanceIDs {
			if id == instanceID {
				c.Next()
				return
			}
		}
		slog.Warn("instance ID not allowed", slog.String("instanceID", instanceID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "instance ID not allowed"})
		c.Abort()
	}
}
