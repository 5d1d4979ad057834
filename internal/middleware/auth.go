package middleware

import (
	"context"
	"net/http"
	"strings"

	"chat-realtime-api/internal/identity"
	"chat-realtime-api/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// Authenticator resolves a bearer token to a local user.
type Authenticator interface {
	Resolve(ctx context.Context, token string) (*identity.UserRecord, error)
}

// TokenFromRequest extracts the token from "Authorization: Bearer <token>",
// falling back to the token query parameter for browsers opening a
// WebSocket, where custom headers cannot be set.
func TokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Query("token")
}

// JWTAuthMiddleware resolves the caller and stores their identity in the context
func JWTAuthMiddleware(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		user, err := authn.Resolve(c.Request.Context(), tokenString)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("request not authenticated", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		// Store user info in context for use in handlers
		c.Set(ContextUserID, user.ID)
		c.Set(ContextUsername, user.Username)

		c.Next()
	}
}
