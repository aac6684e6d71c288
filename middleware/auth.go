package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tuwi/utils"
)

const (
	ClientUserIDKey = "clientUserId"
	BraiderIDKey    = "braiderID"

	roleBraider = "braider"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// OptionalSession attaches the caller's user id when a valid session token is
// present. Bookings stay open to guests, so bad tokens are ignored.
func OptionalSession(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			claims, err := utils.ValidateToken(secret, tokenString)
			if err != nil {
				GetRequestLogger(c).Debug("Ignoring invalid session token", zap.Error(err))
			} else {
				c.Set(ClientUserIDKey, claims.Subject)
			}
		}
		c.Next()
	}
}

// RequireBraider only lets a braider act on their own catalogue: the token's
// subject must match the :id route parameter.
func RequireBraider(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Sessão em falta ou inválida")
			return
		}
		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Sessão inválida")
			return
		}
		if claims.Role != roleBraider || claims.Subject != c.Param("id") {
			GetRequestLogger(c).Warn("Braider session does not own resource",
				zap.String("subject", claims.Subject),
				zap.String("braiderId", c.Param("id")))
			utils.JSONError(c, http.StatusForbidden, "Sem permissão para alterar esta trancista")
			return
		}
		c.Set(BraiderIDKey, claims.Subject)
		c.Next()
	}
}
