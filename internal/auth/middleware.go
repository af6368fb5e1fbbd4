package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foxobr/ficha-rpg/internal/game/session"
)

// callerKey is the gin context key holding the resolved caller.
const callerKey = "auth.caller"

// UserSource resolves a verified user id to the full user record.
type UserSource interface {
	GetByID(ctx context.Context, id string) (session.User, error)
}

// Middleware resolves bearer tokens to users for request handlers.
type Middleware struct {
	tokens *TokenManager
	users  UserSource
}

// NewMiddleware creates a Middleware backed by the given token manager
// and user source.
func NewMiddleware(tokens *TokenManager, users UserSource) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// RequireUser rejects requests without a valid bearer token and stores
// the resolved user in the request context for Caller.
//
// The role carried by the user is loaded fresh on every request, so a
// role change takes effect without re-issuing tokens.
func (m *Middleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || scheme != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.Set(callerKey, user)
		c.Next()
	}
}

// Caller returns the user resolved by RequireUser. The zero User is
// returned on routes that skipped the middleware.
func Caller(c *gin.Context) session.User {
	v, ok := c.Get(callerKey)
	if !ok {
		return session.User{}
	}
	u, _ := v.(session.User)
	return u
}
