package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/response"
)

// LoginPath is where anonymous visitors of protected areas are sent.
const LoginPath = "/admin/login"

// Area describes a protected part of the site.
type Area struct {
	LoginPath string
	Allowed   []models.UserRole
}

func (a Area) allows(role models.UserRole) bool {
	for _, allowed := range a.Allowed {
		if allowed == role {
			return true
		}
	}
	return false
}

// Guard enforces area access with redirects:
//
//	no session on the login page   -> login form
//	session on the login page      -> role dashboard
//	no session elsewhere           -> login page
//	role not allowed               -> role dashboard
//	role allowed                   -> handler
func Guard(area Area) gin.HandlerFunc {
	loginPath := area.LoginPath
	if loginPath == "" {
		loginPath = LoginPath
	}
	return func(c *gin.Context) {
		session := SessionFrom(c)
		onLogin := c.Request.URL.Path == loginPath

		switch {
		case session == nil && onLogin:
			c.Next()
		case session != nil && onLogin:
			response.Redirect(c, session.Role().Dashboard())
			c.Abort()
		case session == nil:
			response.Redirect(c, loginPath)
			c.Abort()
		case !area.allows(session.Role()):
			response.Redirect(c, session.Role().Dashboard())
			c.Abort()
		default:
			c.Next()
		}
	}
}

// RequireRoles protects JSON endpoints, answering 401 without a session and 403 for other roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	area := Area{Allowed: roles}
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !area.allows(session.Role()) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
