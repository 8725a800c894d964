package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"voyago/config"
	"voyago/utils"
)

// AdminKeyMiddleware guards manager routes with the static key from config.
// The key comes in the X-Admin-Key header or as a Bearer token. Admin routes
// stay locked while no key is configured.
func AdminKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		configured := config.AppConfig.AdminAPIKey
		if configured == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Admin API is not configured"})
			return
		}

		key := c.GetHeader(utils.AdminKeyHeader)
		if key == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if key != configured {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
