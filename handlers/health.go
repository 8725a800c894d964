package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voyago/utils"
)

// HealthHandler reports the latest dependency health snapshot. Degraded
// dependencies flip the HTTP status so load balancers can react.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()

	healthy := status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}

	code := http.StatusOK
	state := "ok"
	if status.CheckedAt.IsZero() {
		state = "starting"
	} else if !healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}

	c.JSON(code, gin.H{"status": state, "details": status})
}
