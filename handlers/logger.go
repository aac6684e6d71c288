package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tuwi/middleware"
)

// getLogger retrieves the request-scoped logger set by middleware.RequestLogger.
func getLogger(c *gin.Context) *zap.Logger {
	return middleware.GetRequestLogger(c)
}
