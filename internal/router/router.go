package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/handler"
	"github.com/kita-portal/kita-api/internal/middleware"
	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/internal/service"
	"github.com/kita-portal/kita-api/pkg/logger"
	corsmiddleware "github.com/kita-portal/kita-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kita-portal/kita-api/pkg/middleware/requestid"
)

// Options configures the engine.
type Options struct {
	Production     bool
	AllowedOrigins []string
	CookieName     string
	UploadDir      string
	UploadURL      string
}

// Handlers groups every HTTP handler the engine mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	TestRole      *handler.TestRoleHandler
	Dashboard     *handler.DashboardHandler
	Areas         *handler.AreaHandler
	Users         *handler.UserHandler
	Parents       *handler.ParentHandler
	Employees     *handler.EmployeeHandler
	Groups        *handler.GroupHandler
	Children      *handler.ChildHandler
	Teachers      *handler.TeacherHandler
	Schedules     *handler.ScheduleHandler
	Meals         *handler.MealHandler
	Announcements *handler.AnnouncementHandler
	Uploads       *handler.UploadHandler
	Metrics       *handler.MetricsHandler
}

// Dependencies are the cross cutting collaborators of the middleware chain.
type Dependencies struct {
	Sessions    middleware.SessionResolver
	Invalidator middleware.DashboardInvalidator
	Audit       middleware.AuditWriter
	Metrics     *service.MetricsService
	Logger      *zap.Logger
}

func (d Dependencies) audit(resource string) gin.HandlerFunc {
	if d.Audit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.Audit(d.Audit, resource, d.Logger)
}

// New builds the gin engine with all routes.
func New(opts Options, deps Dependencies, h Handlers) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.CookieName == "" {
		opts.CookieName = "kita_session"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.LoadSession(deps.Sessions, opts.CookieName))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if !opts.Production {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if opts.UploadDir != "" {
		urlPrefix := opts.UploadURL
		if urlPrefix == "" {
			urlPrefix = "/uploads"
		}
		r.Static(urlPrefix, opts.UploadDir)
	}

	// public projections
	r.GET("/", h.Dashboard.Public)
	r.GET("/kinder-ansicht", h.Dashboard.Kiosk)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/sign-up/email", h.Auth.SignUp)
		auth.POST("/sign-in/email", h.Auth.SignIn)
		auth.POST("/sign-out", h.Auth.SignOut)
		auth.GET("/session", h.Auth.Session)

		api.POST("/upload", middleware.RequireRoles(models.RoleAdmin), h.Uploads.Upload)

		if !opts.Production && h.TestRole != nil {
			api.POST("/test/set-role", h.TestRole.SetRole)
		}
	}

	// logout stays reachable for every role
	r.POST("/admin/logout", h.Auth.SignOut)

	login := r.Group(middleware.LoginPath, middleware.Guard(middleware.Area{Allowed: []models.UserRole{models.RoleAdmin}}))
	login.GET("", h.Auth.LoginForm)
	login.POST("", h.Auth.Login)

	admin := r.Group("/admin",
		middleware.Guard(middleware.Area{Allowed: []models.UserRole{models.RoleAdmin}}),
		middleware.InvalidateDashboards(deps.Invalidator),
	)
	admin.GET("", h.Dashboard.Admin)

	users := admin.Group("/benutzer")
	users.GET("", h.Users.List)
	users.POST("/updateRole", h.Users.UpdateRole)
	users.POST("/delete", h.Users.Delete)

	parents := admin.Group("/eltern")
	parents.GET("", h.Parents.List)
	parents.POST("/updateProfile", h.Parents.UpdateProfile)
	parents.POST("/linkChild", h.Parents.LinkChild)
	parents.POST("/updateLink", h.Parents.UpdateLink)
	parents.POST("/unlinkChild", h.Parents.UnlinkChild)

	employees := admin.Group("/mitarbeiter")
	employees.GET("", h.Employees.List)
	employees.POST("/updateProfile", h.Employees.UpdateProfile)
	employees.POST("/linkErzieher", h.Employees.LinkTeacher)
	employees.POST("/unlinkErzieher", h.Employees.UnlinkTeacher)

	groups := admin.Group("/gruppen", deps.audit("group"))
	groups.GET("", h.Groups.List)
	groups.POST("/create", h.Groups.Create)
	groups.POST("/edit", h.Groups.Edit)
	groups.POST("/delete", h.Groups.Delete)

	children := admin.Group("/kinder", deps.audit("child"))
	children.GET("", h.Children.List)
	children.POST("/create", h.Children.Create)
	children.POST("/edit", h.Children.Edit)
	children.POST("/delete", h.Children.Delete)

	teachers := admin.Group("/erzieher", deps.audit("teacher"))
	teachers.GET("", h.Teachers.List)
	teachers.POST("/create", h.Teachers.Create)
	teachers.POST("/edit", h.Teachers.Edit)
	teachers.POST("/delete", h.Teachers.Delete)

	schedules := admin.Group("/dienstplan", deps.audit("schedule"))
	schedules.GET("", h.Schedules.Week)
	schedules.GET("/export.csv", h.Schedules.Export(service.FormatCSV))
	schedules.GET("/export.pdf", h.Schedules.Export(service.FormatPDF))
	schedules.POST("/create", h.Schedules.Create)
	schedules.POST("/edit", h.Schedules.Edit)
	schedules.POST("/delete", h.Schedules.Delete)

	meals := admin.Group("/speiseplan", deps.audit("meal"))
	meals.GET("", h.Meals.Week)
	meals.GET("/export.csv", h.Meals.Export(service.FormatCSV))
	meals.GET("/export.pdf", h.Meals.Export(service.FormatPDF))
	meals.POST("/create", h.Meals.Create)
	meals.POST("/edit", h.Meals.Edit)
	meals.POST("/delete", h.Meals.Delete)

	announcements := admin.Group("/ankuendigungen", deps.audit("announcement"))
	announcements.GET("", h.Announcements.List)
	announcements.POST("/create", h.Announcements.Create)
	announcements.POST("/edit", h.Announcements.Edit)
	announcements.POST("/delete", h.Announcements.Delete)

	r.GET("/eltern", middleware.Guard(middleware.Area{Allowed: []models.UserRole{models.RoleParent}}), h.Areas.Parent)
	r.GET("/mitarbeiter", middleware.Guard(middleware.Area{Allowed: []models.UserRole{models.RoleEmployee}}), h.Areas.Employee)

	return r
}
