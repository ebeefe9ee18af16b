package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/middleware"
	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/response"
)

type authService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.SignInResult, error)
	SignOut(ctx context.Context, token string, actor models.Actor) error
	SessionTTL() time.Duration
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler manages sign up, sign in and sign out.
type AuthHandler struct {
	auth   authService
	cookie CookieConfig
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(auth authService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "kita_session"
	}
	return &AuthHandler{auth: auth, cookie: cookie}
}

// SignUp godoc
// @Summary Register an email account
// @Description New accounts receive the parent role and an empty parent profile.
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.SignUpRequest true "Sign up payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/auth/sign-up/email [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sign up payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	user, err := h.auth.SignUp(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// SignIn godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.SignInRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/auth/sign-in/email [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	result, ok := h.signIn(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// LoginForm godoc
// @Summary Login form state
// @Description Reached only without a session; signed in users are redirected to their area.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/login [get]
func (h *AuthHandler) LoginForm(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"fields": []string{"email", "password"}, "action": middleware.LoginPath}, nil)
}

// Login godoc
// @Summary Sign in from the login form
// @Description Sets the session cookie and redirects to the dashboard of the user's role.
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Success 302
// @Failure 401 {object} response.Envelope
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	result, ok := h.signIn(c)
	if !ok {
		return
	}
	response.Redirect(c, result.Redirect)
}

// SignOut godoc
// @Summary Sign out
// @Description Deletes the session and clears the cookie; succeeds without a session too.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/auth/sign-out [post]
// @Router /admin/logout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	token := middleware.SessionToken(c, h.cookie.Name)
	if token != "" {
		if err := h.auth.SignOut(c.Request.Context(), token, actorFromContext(c)); err != nil {
			response.Error(c, err)
			return
		}
	}
	h.setCookie(c, "", -1)
	if c.FullPath() == "/admin/logout" {
		response.Redirect(c, middleware.LoginPath)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true}, nil)
}

// Session godoc
// @Summary Current session
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

func (h *AuthHandler) signIn(c *gin.Context) (*models.SignInResult, bool) {
	var req models.SignInRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid credentials payload"))
		return nil, false
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	result, err := h.auth.SignIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	h.setCookie(c, result.Token, int(h.auth.SessionTTL().Seconds()))
	return result, true
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
