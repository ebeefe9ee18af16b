package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/pkg/logger"
)

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "session"

// SessionResolver turns a session token into a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// LoadSession resolves the session cookie, or a bearer token, and stores the session on the
// context. Requests without a valid session continue anonymously; the guards decide what to do.
func LoadSession(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		session, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextSessionKey, session)
		if session.User != nil {
			c.Set(logger.UserIDKey, session.User.ID)
		}
		c.Next()
	}
}

// SessionToken reads the raw token from the cookie or the Authorization header.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SessionFrom returns the session resolved for this request, if any.
func SessionFrom(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok || session.User == nil {
		return nil
	}
	return session
}
