package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tuwi/utils"
)

// HealthHandler reports the latest snapshot from the health monitor.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": http.StatusText(code), "health": status})
}
