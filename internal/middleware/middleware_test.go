package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kita-portal/kita-api/internal/models"
)

type stubResolver struct {
	sessions map[string]*models.Session
}

func (s stubResolver) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if session, ok := s.sessions[token]; ok {
		return session, nil
	}
	return nil, errors.New("invalid session")
}

func sessionFor(role models.UserRole) *models.Session {
	return &models.Session{ID: "s-" + string(role), User: &models.User{ID: "u-" + string(role), Role: role}}
}

func newGuardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := stubResolver{sessions: map[string]*models.Session{
		"admin":    sessionFor(models.RoleAdmin),
		"parent":   sessionFor(models.RoleParent),
		"employee": sessionFor(models.RoleEmployee),
		"norole":   sessionFor(""),
		"odd":      sessionFor("janitor"),
	}}

	r := gin.New()
	r.Use(LoadSession(resolver, "kita_session"))
	admin := r.Group("/admin", Guard(Area{Allowed: []models.UserRole{models.RoleAdmin}}))
	admin.GET("/login", func(c *gin.Context) { c.String(http.StatusOK, "login") })
	admin.GET("/kinder", func(c *gin.Context) { c.String(http.StatusOK, "kinder") })
	r.GET("/eltern", Guard(Area{Allowed: []models.UserRole{models.RoleParent}}), func(c *gin.Context) { c.String(http.StatusOK, "eltern") })
	r.POST("/api/upload", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func perform(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "kita_session", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuardStateMachine(t *testing.T) {
	r := newGuardedRouter()

	cases := []struct {
		name     string
		path     string
		token    string
		status   int
		location string
	}{
		{"anonymous login form", "/admin/login", "", http.StatusOK, ""},
		{"signed in on login", "/admin/login", "parent", http.StatusFound, "/eltern"},
		{"admin on login", "/admin/login", "admin", http.StatusFound, "/admin"},
		{"anonymous protected", "/admin/kinder", "", http.StatusFound, "/admin/login"},
		{"invalid cookie", "/admin/kinder", "forged", http.StatusFound, "/admin/login"},
		{"wrong role", "/admin/kinder", "employee", http.StatusFound, "/mitarbeiter"},
		{"missing role counts as parent", "/admin/kinder", "norole", http.StatusFound, "/eltern"},
		{"unknown role goes home", "/admin/kinder", "odd", http.StatusFound, "/"},
		{"allowed", "/admin/kinder", "admin", http.StatusOK, ""},
		{"parent area", "/eltern", "norole", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, tc.path, tc.token)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}
}

func TestRequireRolesAnswersWithEnvelope(t *testing.T) {
	r := newGuardedRouter()

	w := perform(r, http.MethodPost, "/api/upload", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = perform(r, http.MethodPost, "/api/upload", "parent")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	w = perform(r, http.MethodPost, "/api/upload", "admin")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionTokenFallsBackToBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", SessionToken(c, "kita_session"))

	c.Request.AddCookie(&http.Cookie{Name: "kita_session", Value: "cookie"})
	assert.Equal(t, "cookie", SessionToken(c, "kita_session"))
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateDashboards(ctx context.Context) { c.calls++ }

func TestInvalidateDashboardsOnSuccessfulMutation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache := &countingInvalidator{}
	r := gin.New()
	r.Use(InvalidateDashboards(cache))
	r.GET("/admin/kinder", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/admin/kinder/create", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/admin/kinder/delete", func(c *gin.Context) { c.Status(http.StatusConflict) })

	perform(r, http.MethodGet, "/admin/kinder", "")
	perform(r, http.MethodPost, "/admin/kinder/delete", "")
	assert.Equal(t, 0, cache.calls)

	perform(r, http.MethodPost, "/admin/kinder/create", "")
	assert.Equal(t, 1, cache.calls)
}

type recordingAuditWriter struct {
	logs []*models.AuditLog
	err  error
}

func (r *recordingAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

func TestAuditRecordsFormActions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	writer := &recordingAuditWriter{}
	resolver := stubResolver{sessions: map[string]*models.Session{"admin": sessionFor(models.RoleAdmin)}}

	r := gin.New()
	r.Use(LoadSession(resolver, "kita_session"))
	group := r.Group("/admin/kinder", Audit(writer, "children", nil))
	group.POST("/create", func(c *gin.Context) {
		SetResourceID(c, "c1")
		c.Status(http.StatusCreated)
	})
	group.POST("/linkChild", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodPost, "/admin/kinder/create", "admin")
	perform(r, http.MethodPost, "/admin/kinder/linkChild", "admin")

	require.Len(t, writer.logs, 1)
	entry := writer.logs[0]
	assert.Equal(t, models.AuditActionCreate, entry.Action)
	assert.Equal(t, "children", entry.Resource)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "c1", *entry.ResourceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-admin", *entry.UserID)
}

func TestPortalArea(t *testing.T) {
	cases := map[string]string{
		"/":                            "public",
		"/kinder-ansicht":              "public",
		"/admin":                       "admin",
		"/admin/kinder/create":         "admin",
		"/admin/speiseplan/export.pdf": "admin",
		"/administration":              "system",
		"/eltern":                      "parent",
		"/mitarbeiter":                 "employee",
		"/api/upload":                  "api",
		"/metrics":                     "system",
		"/uploads/*filepath":           "system",
		"unmatched":                    "system",
	}
	for route, want := range cases {
		assert.Equal(t, want, portalArea(route), route)
	}
}
