package middleware

import (
	"net/http"
	"strings"

	"sprinthub/internal/auth"
	"sprinthub/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActorKey is the gin context key the acting-user middleware stores the
// resolved permission.Actor under.
const ActorKey = "actor"

const userIDHeader = "X-User-Id"

// ActingUser resolves who is making the request. An X-User-Id header binds
// the request to that user; a malformed header is always a 400, never a
// silent fallthrough to the system actor. Without the header the request
// runs as the system actor; a caller may present a service token, and a
// present-but-invalid token is rejected rather than downgraded.
func ActingUser(serviceSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(userIDHeader))
		if header != "" {
			userID, err := uuid.Parse(header)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
				return
			}
			c.Set(ActorKey, permission.User(userID))
			c.Next()
			return
		}

		if authz := c.GetHeader("Authorization"); authz != "" {
			tokenStr := strings.TrimPrefix(authz, "Bearer ")
			if _, err := auth.ParseServiceToken(serviceSecret, tokenStr); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid service token"})
				return
			}
		}

		c.Set(ActorKey, permission.System())
		c.Next()
	}
}

// ActorFrom returns the actor set by ActingUser, defaulting to the system
// actor when the middleware did not run.
func ActorFrom(c *gin.Context) permission.Actor {
	value, exists := c.Get(ActorKey)
	if !exists {
		return permission.System()
	}
	actor, ok := value.(permission.Actor)
	if !ok {
		return permission.System()
	}
	return actor
}
