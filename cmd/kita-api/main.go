package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/kita-portal/kita-api/api/swagger"
	"github.com/kita-portal/kita-api/internal/handler"
	"github.com/kita-portal/kita-api/internal/repository"
	"github.com/kita-portal/kita-api/internal/router"
	"github.com/kita-portal/kita-api/internal/service"
	"github.com/kita-portal/kita-api/pkg/cache"
	"github.com/kita-portal/kita-api/pkg/config"
	"github.com/kita-portal/kita-api/pkg/database"
	"github.com/kita-portal/kita-api/pkg/logger"
	"github.com/kita-portal/kita-api/pkg/storage"
	"github.com/kita-portal/kita-api/pkg/validation"
)

// @title Kita API
// @version 1.0.0
// @description Administration of groups, children, teachers, shift and meal plans, announcements and role profiles of a Kita.
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(db, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	ctx := context.Background()
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// the dashboards fall back to direct queries
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
	}

	loc := cfg.Kita.Location()
	validate := validation.Default()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	authRepo := repository.NewAuthRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	lifecycleRepo := repository.NewLifecycleRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	childRepo := repository.NewChildRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	mealRepo := repository.NewMealRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	authSvc := service.NewAuthService(userRepo, authRepo, metrics, validate, logr, service.AuthConfig{
		Secret:     cfg.Session.Secret,
		SessionTTL: cfg.Session.TTL,
	})
	lifecycleSvc := service.NewLifecycleService(lifecycleRepo, userRepo, metrics, validate, logr)
	groupSvc := service.NewGroupService(groupRepo, validate, logr)
	childSvc := service.NewChildService(childRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, teacherRepo, validate, logr, loc)
	mealSvc := service.NewMealService(mealRepo, validate, logr, loc)
	announcementSvc := service.NewAnnouncementService(announcementRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, profileRepo, childRepo, teacherRepo, scheduleSvc, logr)
	exportSvc := service.NewExportService(scheduleSvc, mealSvc, logr, nil, nil)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Repo:          dashboardRepo,
		Groups:        groupRepo,
		Children:      childRepo,
		Teachers:      teacherRepo,
		Users:         userRepo,
		Announcements: announcementRepo,
		Cache:         cacheSvc,
		Logger:        logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:     cfg.Dashboard.CacheTTL,
			KioskRefresh: cfg.Dashboard.KioskRefresh,
			Location:     loc,
		},
	})

	uploadStore, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to prepare upload directory", zap.Error(err))
	}
	uploadSvc := service.NewUploadService(uploadStore, metrics, logr, service.UploadConfig{
		MaxBytes:     cfg.Uploads.MaxFileBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
		URLPrefix:    cfg.Uploads.URLPrefix,
	})

	engine := router.New(
		router.Options{
			Production:     cfg.IsProduction(),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			CookieName:     cfg.Session.CookieName,
			UploadDir:      uploadStore.Dir(),
			UploadURL:      cfg.Uploads.URLPrefix,
		},
		router.Dependencies{
			Sessions:    authSvc,
			Invalidator: cacheSvc,
			Audit:       userRepo,
			Metrics:     metrics,
			Logger:      logr,
		},
		router.Handlers{
			Auth:          handler.NewAuthHandler(authSvc, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}),
			TestRole:      handler.NewTestRoleHandler(lifecycleSvc),
			Dashboard:     handler.NewDashboardHandler(dashboardSvc),
			Areas:         handler.NewAreaHandler(userSvc),
			Users:         handler.NewUserHandler(userSvc, lifecycleSvc),
			Parents:       handler.NewParentHandler(userSvc, lifecycleSvc),
			Employees:     handler.NewEmployeeHandler(userSvc, lifecycleSvc),
			Groups:        handler.NewGroupHandler(groupSvc, lifecycleSvc),
			Children:      handler.NewChildHandler(childSvc, groupSvc),
			Teachers:      handler.NewTeacherHandler(teacherSvc, lifecycleSvc),
			Schedules:     handler.NewScheduleHandler(scheduleSvc, exportSvc),
			Meals:         handler.NewMealHandler(mealSvc, exportSvc),
			Announcements: handler.NewAnnouncementHandler(announcementSvc),
			Uploads:       handler.NewUploadHandler(uploadSvc),
			Metrics:       handler.NewMetricsHandler(metrics, db),
		},
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
