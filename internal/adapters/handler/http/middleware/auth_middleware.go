package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/altrove/habitlens/internal/core/services"
)

// ContextUserIDKey is where the middleware stores the authenticated
// user id in the gin context.
const ContextUserIDKey = "userID"

// bearerToken extracts the credential from an "Authorization: Bearer x"
// header. Anything else, including an empty credential, is rejected.
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware guards a route group behind JWT validation and makes
// the subject available via GetUserID.
func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}

		userID, err := tokens.ValidateToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// GetUserID reads the authenticated user id set by AuthMiddleware.
func GetUserID(c *gin.Context) (string, bool) {
	id, ok := c.Get(ContextUserIDKey)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok
}
