package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const clientIPKey = "clientIP"

// ClientIP returns the caller's address as resolved by gin, which only honours
// X-Forwarded-For and X-Real-IP from trusted proxies. Empty means unknown.
func ClientIP(c *gin.Context) string {
	if ip, ok := c.Get(clientIPKey); ok {
		if s, ok := ip.(string); ok {
			return s
		}
	}
	ip := strings.TrimSpace(c.ClientIP())
	c.Set(clientIPKey, ip)
	return ip
}
