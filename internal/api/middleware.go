package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/habicasa/backend/internal/token"
)

const allyIDKey = "ally_id"

// RequireAuth returns a Gin middleware that validates the Bearer session
// token and stores the ally ID in the request context.
func RequireAuth(tokens *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		id, err := uuid.Parse(claims.AllyID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(allyIDKey, id)
		c.Next()
	}
}

// AllyID returns the authenticated ally's ID set by RequireAuth.
func AllyID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(allyIDKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}
