package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-remuneration-api/internal/handler"
	"github.com/noah-isme/exam-remuneration-api/internal/middleware"
	"github.com/noah-isme/exam-remuneration-api/internal/models"
	"github.com/noah-isme/exam-remuneration-api/internal/rates"
	"github.com/noah-isme/exam-remuneration-api/internal/repository"
	"github.com/noah-isme/exam-remuneration-api/internal/service"
	"github.com/noah-isme/exam-remuneration-api/pkg/cache"
	"github.com/noah-isme/exam-remuneration-api/pkg/config"
	"github.com/noah-isme/exam-remuneration-api/pkg/database"
	"github.com/noah-isme/exam-remuneration-api/pkg/export"
	"github.com/noah-isme/exam-remuneration-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-remuneration-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-remuneration-api/pkg/middleware/requestid"
)

// @title Exam Remuneration API
// @version 1.0.0
// @description Examination remuneration record keeping and billing
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()

	// Repositories.
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	userRepo := repository.NewUserRepository(db)

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	// Services.
	schedule := rates.FromConfig(cfg.Rates)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, teacherRepo, validate, logr)

	var reportCache service.ReportCache
	if cacheRepo != nil {
		reportCache = cacheRepo
	}

	remunerationSvc := service.NewRemunerationService(
		claimRepo, teacherRepo, semesterRepo, courseRepo,
		reportCache, schedule, cfg.Cache.ReportTTL, validate, logr,
	)
	importSvc := service.NewImportService(teacherRepo, courseRepo, semesterRepo, remunerationSvc, service.DefaultWorkbookLayout(), logr)
	exportSvc := service.NewExportService(remunerationSvc, export.NewPDFExporter(), export.NewCSVExporter(), logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	semesterHandler := handler.NewSemesterHandler(semesterSvc)
	remunerationHandler := handler.NewRemunerationHandler(remunerationSvc, importSvc, exportSvc, metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)

	authRequired := middleware.JWT(authSvc)
	adminOnly := middleware.RBAC(models.RoleAdmin)

	teachers := api.Group("/teachers")
	teachers.GET("", teacherHandler.List)
	teachers.GET("/:teacherId", teacherHandler.Get)
	teachers.POST("", authRequired, adminOnly, teacherHandler.Create)
	teachers.PUT("/:teacherId", authRequired, adminOnly, teacherHandler.Update)
	teachers.GET("/:teacherId/remunerations", authRequired, adminOnly, remunerationHandler.History)
	teachers.GET("/:teacherId/semesters/:semesterId/remunerations", authRequired, adminOnly, remunerationHandler.Get)
	teachers.PUT("/:teacherId/semesters/:semesterId/remunerations", authRequired, adminOnly, remunerationHandler.Submit)
	teachers.GET("/:teacherId/semesters/:semesterId/bill", authRequired, adminOnly, remunerationHandler.ExportBill)

	courses := api.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/:code", courseHandler.Get)
	courses.POST("", authRequired, adminOnly, courseHandler.Create)

	semesters := api.Group("/semesters")
	semesters.GET("", semesterHandler.List)
	semesters.GET("/:semesterId", semesterHandler.Get)
	semesters.POST("", authRequired, adminOnly, semesterHandler.Create)
	semesters.GET("/:semesterId/report", authRequired, adminOnly, remunerationHandler.CumulativeReport)
	semesters.GET("/:semesterId/report/export", authRequired, adminOnly, remunerationHandler.ExportCumulative)
	semesters.POST("/:semesterId/import", authRequired, adminOnly, remunerationHandler.ImportWorkbook)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
