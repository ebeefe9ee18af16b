package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/middleware"
	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/internal/service"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(path string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(c *gin.Context, id string, role models.UserRole) {
	c.Set(middleware.ContextSessionKey, &models.Session{ID: "s-" + id, UserID: id, User: &models.User{ID: id, Role: role}})
}

type fakeGroups struct {
	created   *service.GroupRequest
	updatedID string
	deleted   string
	err       error
}

func (f *fakeGroups) List(context.Context) ([]models.Group, error) {
	return []models.Group{{ID: "g1", Name: "Bären"}}, f.err
}

func (f *fakeGroups) Create(_ context.Context, req service.GroupRequest) (*models.Group, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &req
	return &models.Group{ID: "g-new", Name: req.Name, Color: req.Color}, nil
}

func (f *fakeGroups) Update(_ context.Context, id string, req service.GroupRequest) (*models.Group, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updatedID = id
	return &models.Group{ID: id, Name: req.Name, Color: req.Color}, nil
}

func (f *fakeGroups) DeleteGroup(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

func TestGroupHandlerCreateFromForm(t *testing.T) {
	groups := &fakeGroups{}
	h := NewGroupHandler(groups, groups)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = formRequest("/admin/gruppen/create", url.Values{"name": {"Füchse"}, "farbe": {"#ff8800"}})

	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, groups.created)
	assert.Equal(t, "Füchse", groups.created.Name)
	assert.Equal(t, "#ff8800", groups.created.Color)
	assert.Equal(t, "g-new", c.GetString("audit_resource_id"))
}

func TestGroupHandlerEditFromJSON(t *testing.T) {
	groups := &fakeGroups{}
	h := NewGroupHandler(groups, groups)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest("/admin/gruppen/edit", map[string]string{"id": "g1", "name": "Igel", "farbe": "#00ff00"})

	h.Edit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "g1", groups.updatedID)
}

func TestGroupHandlerEditRequiresID(t *testing.T) {
	groups := &fakeGroups{}
	h := NewGroupHandler(groups, groups)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = formRequest("/admin/gruppen/edit", url.Values{"name": {"Igel"}})

	h.Edit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decode(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
	assert.Empty(t, groups.updatedID)
}

func TestGroupHandlerDeleteMapsGuardError(t *testing.T) {
	groups := &fakeGroups{err: appErrors.Clone(appErrors.ErrGroupHasChildren, "")}
	h := NewGroupHandler(groups, groups)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = formRequest("/admin/gruppen/delete", url.Values{"id": {"g1"}})

	h.Delete(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "g1", groups.deleted)
	assert.Equal(t, "GROUP_HAS_CHILDREN", decode(t, rec).Error.Code)
}

type fakeRoles struct {
	actor   models.Actor
	userID  string
	role    models.UserRole
	email   string
	deleted string
	err     error
}

func (f *fakeRoles) SetRole(_ context.Context, actor models.Actor, userID string, role models.UserRole) (*models.User, error) {
	f.actor, f.userID, f.role = actor, userID, role
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: userID, Role: role}, nil
}

func (f *fakeRoles) SetRoleByEmail(_ context.Context, actor models.Actor, email string, role models.UserRole) (*models.User, error) {
	f.actor, f.email, f.role = actor, email, role
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u1", Email: email, Role: role}, nil
}

func (f *fakeRoles) DeleteUser(_ context.Context, actor models.Actor, userID string) error {
	f.actor, f.deleted = actor, userID
	return f.err
}

func TestUserHandlerUpdateRolePassesActor(t *testing.T) {
	roles := &fakeRoles{}
	h := NewUserHandler(nil, roles)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = formRequest("/admin/benutzer/updateRole", url.Values{"userId": {"u2"}, "role": {"employee"}})
	withSession(c, "admin-1", models.RoleAdmin)

	h.UpdateRole(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u2", roles.userID)
	assert.Equal(t, models.RoleEmployee, roles.role)
	assert.Equal(t, "admin-1", roles.actor.UserID)
}

func TestUserHandlerDeleteLastAdmin(t *testing.T) {
	roles := &fakeRoles{err: appErrors.Clone(appErrors.ErrLastAdminProtected, "")}
	h := NewUserHandler(nil, roles)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = formRequest("/admin/benutzer/delete", url.Values{"userId": {"admin-1"}})

	h.Delete(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "LAST_ADMIN_PROTECTED", decode(t, rec).Error.Code)
}

func TestTestRoleHandlerSetsRoleByEmail(t *testing.T) {
	roles := &fakeRoles{}
	h := NewTestRoleHandler(roles)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest("/api/test/set-role", map[string]string{"email": "kim@example.com", "role": "admin"})

	h.SetRole(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kim@example.com", roles.email)
	assert.Equal(t, models.RoleAdmin, roles.role)
}

type fakeLinker struct {
	userID, childID string
	kind            models.RelationKind
	err             error
}

func (f *fakeLinker) UpdateParentProfile(_ context.Context, userID string, req service.ParentProfileRequest) (*models.ParentProfile, error) {
	return &models.ParentProfile{ID: "p1", UserID: userID, Phone: req.Phone}, f.err
}

func (f *fakeLinker) LinkChildToParent(_ context.Context, userID, childID string, kind models.RelationKind) (*models.ChildLink, error) {
	f.userID, f.childID, f.kind = userID, childID, kind
	if f.err != nil {
		return nil, f.err
	}
	return &models.ChildLink{ID: "l1", ChildID: childID, Relationship: kind}, nil
}

func (f *fakeLinker) UpdateLink(context.Context, string, models.RelationKind) (*models.ChildLink, error) {
	return nil, f.err
}

func (f *fakeLinker) UnlinkChild(context.Context, string) error {
	return f.err
}

func TestParentHandlerLinkChild(t *testing.T) {
	linker := &fakeLinker{}
	h := NewParentHandler(nil, linker)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = formRequest("/admin/eltern/linkChild", url.Values{"userId": {"u1"}, "kindId": {"c1"}, "beziehung": {"mother"}})

	h.LinkChild(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", linker.userID)
	assert.Equal(t, "c1", linker.childID)
	assert.Equal(t, models.RelationMother, linker.kind)
}

func TestParentHandlerLinkChildDuplicate(t *testing.T) {
	linker := &fakeLinker{err: appErrors.Clone(appErrors.ErrDuplicateLink, "")}
	h := NewParentHandler(nil, linker)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = formRequest("/admin/eltern/linkChild", url.Values{"userId": {"u1"}, "kindId": {"c1"}})

	h.LinkChild(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_LINK", decode(t, rec).Error.Code)
}

type fakeDashboard struct {
	overview *dto.DailyOverview
	hit      bool
	err      error
}

func (f *fakeDashboard) Overview(context.Context) (*dto.DailyOverview, bool, error) {
	return f.overview, f.hit, f.err
}

func (f *fakeDashboard) Summary(context.Context) (*dto.AdminSummary, error) {
	return &dto.AdminSummary{Groups: 2, Children: 10}, f.err
}

func (f *fakeDashboard) KioskRefreshSeconds() int { return 60 }

func TestDashboardHandlerKioskMeta(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboard{overview: &dto.DailyOverview{Date: "2024-03-12", Time: "08:15"}, hit: true})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/kinder-ansicht", nil)

	h.Kiosk(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decode(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(60), envelope.Meta["refresh_seconds"])
	assert.Contains(t, string(envelope.Data), `"datum":"2024-03-12"`)
}

func TestDashboardHandlerPublicFailure(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboard{err: appErrors.Internal(assert.AnError, "boom")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.Public(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type fakeAuth struct {
	signIn   *models.SignInResult
	err      error
	signOut  string
	lastUser models.SignInRequest
}

func (f *fakeAuth) SignUp(_ context.Context, req models.SignUpRequest) (*models.User, error) {
	return &models.User{ID: "u1", Email: req.Email, Role: models.RoleParent}, f.err
}

func (f *fakeAuth) SignIn(_ context.Context, req models.SignInRequest) (*models.SignInResult, error) {
	f.lastUser = req
	return f.signIn, f.err
}

func (f *fakeAuth) SignOut(_ context.Context, token string, _ models.Actor) error {
	f.signOut = token
	return nil
}

func (f *fakeAuth) SessionTTL() time.Duration { return time.Hour }

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "kita_session" {
			return cookie
		}
	}
	return nil
}

func TestAuthHandlerLoginRedirectsToRoleDashboard(t *testing.T) {
	auth := &fakeAuth{signIn: &models.SignInResult{Token: "tok", Redirect: "/mitarbeiter"}}
	h := NewAuthHandler(auth, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = formRequest("/admin/login", url.Values{"email": {"e@example.com"}, "password": {"geheim123"}})

	h.Login(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/mitarbeiter", rec.Header().Get("Location"))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "tok", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.Equal(t, "e@example.com", auth.lastUser.Email)
}

func TestAuthHandlerSignInInvalidCredentials(t *testing.T) {
	auth := &fakeAuth{err: appErrors.Clone(appErrors.ErrInvalidCredentials, "")}
	h := NewAuthHandler(auth, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest("/api/auth/sign-in/email", map[string]string{"email": "e@example.com", "password": "nope"})

	h.SignIn(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec))
}

func TestAuthHandlerSignOutClearsCookie(t *testing.T) {
	auth := &fakeAuth{}
	h := NewAuthHandler(auth, CookieConfig{Name: "kita_session"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil)
	c.Request.AddCookie(&http.Cookie{Name: "kita_session", Value: "tok"})

	h.SignOut(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", auth.signOut)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAuthHandlerSessionRequiresLogin(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{}, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)

	h.Session(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeUploads struct {
	declared string
	body     []byte
}

func (f *fakeUploads) Store(_ context.Context, r io.Reader, declared string) (*service.UploadResult, error) {
	f.declared = declared
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(r)
	f.body = buf.Bytes()
	return &service.UploadResult{Path: "/uploads/x.png", Size: int64(buf.Len()), ContentType: "image/png"}, nil
}

func (f *fakeUploads) MaxBytes() int64 { return 1024 }

func TestUploadHandlerReadsFileField(t *testing.T) {
	uploads := &fakeUploads{}
	h := NewUploadHandler(uploads)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "foto.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, writer.Close())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/upload", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), uploads.body)
	assert.Contains(t, string(decode(t, rec).Data), "/uploads/x.png")
}

func TestUploadHandlerMissingFile(t *testing.T) {
	h := NewUploadHandler(&fakeUploads{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = formRequest("/api/upload", url.Values{"name": {"x"}})

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Keine Datei hochgeladen", decode(t, rec).Error.Details["file"])
}

type fakeExporter struct {
	week   string
	format service.ExportFormat
}

func (f *fakeExporter) Schedule(_ context.Context, week string, format service.ExportFormat) (*service.ExportFile, error) {
	f.week, f.format = week, format
	return &service.ExportFile{Filename: "dienstplan-2024-03-11.csv", ContentType: "text/csv", Payload: []byte("a;b")}, nil
}

func (f *fakeExporter) Meals(_ context.Context, week string, format service.ExportFormat) (*service.ExportFile, error) {
	f.week, f.format = week, format
	return &service.ExportFile{Filename: "speiseplan-2024-03-11.pdf", ContentType: "application/pdf", Payload: []byte("%PDF")}, nil
}

func TestScheduleHandlerExportAttachment(t *testing.T) {
	exporter := &fakeExporter{}
	h := NewScheduleHandler(nil, exporter)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dienstplan/export.csv?week=2024-03-13", nil)

	h.Export(service.FormatCSV)(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-03-13", exporter.week)
	assert.Equal(t, service.FormatCSV, exporter.format)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "dienstplan-2024-03-11.csv")
	assert.Equal(t, "a;b", rec.Body.String())
}

type fakeAreas struct{ user *models.User }

func (f *fakeAreas) ParentArea(_ context.Context, user *models.User) (*dto.ParentArea, error) {
	f.user = user
	return &dto.ParentArea{User: *user}, nil
}

func (f *fakeAreas) EmployeeArea(_ context.Context, user *models.User) (*dto.EmployeeArea, error) {
	f.user = user
	return &dto.EmployeeArea{User: *user}, nil
}

func TestAreaHandlerUsesSessionUser(t *testing.T) {
	areas := &fakeAreas{}
	h := NewAreaHandler(areas)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/eltern", nil)
	withSession(c, "parent-1", models.RoleParent)

	h.Parent(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, areas.user)
	assert.Equal(t, "parent-1", areas.user.ID)
}
