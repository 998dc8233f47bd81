package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports service liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "govector",
	})
}

// Root confirms the API is running and points at the useful endpoints.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "govector API",
		"health":  "/api/health",
	})
}
