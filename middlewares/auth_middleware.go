package middlewares

import (
	"net/http"
	"strings"

	"github.com/aapokoiv/nutrition-tracker/cache"
	"github.com/aapokoiv/nutrition-tracker/config"
	"github.com/aapokoiv/nutrition-tracker/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID      = "userID"
	CtxTokenID     = "tokenID"
	CtxTokenExpiry = "tokenExpiry"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	// Browsers cannot set headers on websocket upgrades.
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}

func AuthMiddleware(secret string, revoked *cache.Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := utils.ParseJWT(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session check unavailable"})
			return
		}
		if isRevoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExpiry, claims.ExpiresAt.Time)
		}
		c.Request = c.Request.WithContext(config.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}
