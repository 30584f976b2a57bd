package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// requestUserID resolves the acting user for audit fields. There is no
// authentication layer; callers identify themselves via header.
func requestUserID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return "system"
}

// registerHomeRoutes registers the health check endpoint.
func registerHomeRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
}
