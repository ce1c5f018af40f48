package middleware

import (
	"strings"

	"user_management/internal/model"
	"user_management/internal/utils"

	"github.com/gin-gonic/gin"
)

const AuthActorKey = "authActor"

// OptionalAuth attaches the caller's Actor when a valid bearer token is sent.
// Requests without a usable token continue anonymously, leaving the 401
// decision to handlers that require an actor.
func OptionalAuth(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.Next()
			return
		}

		claims, err := jwtUtil.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.Next()
			return
		}

		c.Set(AuthActorKey, claims.Actor())
		c.Next()
	}
}

// ActorFromContext returns the actor attached by OptionalAuth, or nil
func ActorFromContext(c *gin.Context) *model.Actor {
	val, exists := c.Get(AuthActorKey)
	if !exists {
		return nil
	}
	actor, ok := val.(model.Actor)
	if !ok {
		return nil
	}
	return &actor
}
