package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tapin-io/attendance-api/api/swagger"
	"github.com/tapin-io/attendance-api/internal/handler"
	"github.com/tapin-io/attendance-api/internal/middleware"
	"github.com/tapin-io/attendance-api/internal/models"
	"github.com/tapin-io/attendance-api/internal/repository"
	"github.com/tapin-io/attendance-api/internal/service"
	"github.com/tapin-io/attendance-api/pkg/cache"
	"github.com/tapin-io/attendance-api/pkg/config"
	"github.com/tapin-io/attendance-api/pkg/database"
	"github.com/tapin-io/attendance-api/pkg/export"
	"github.com/tapin-io/attendance-api/pkg/logger"
	corsmiddleware "github.com/tapin-io/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tapin-io/attendance-api/pkg/middleware/requestid"
	"github.com/tapin-io/attendance-api/pkg/storage"
)

// @title Tap-In Attendance API
// @version 1.0.0
// @description RFID attendance tracking with arrival analytics and risk classification
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	orgLocation, err := time.LoadLocation(cfg.Org.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid organization timezone", "timezone", cfg.Org.Timezone, "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	eventRepo := repository.NewEventRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.ListCacheTTL, logr, redisClient != nil)

	authService := service.NewAuthService(service.AuthServiceParams{
		Users:     userRepo,
		Orgs:      orgRepo,
		Students:  studentRepo,
		Validator: validate,
		Logger:    logr,
		Config: service.AuthConfig{
			AccessTokenSecret:  cfg.JWT.Secret,
			AccessTokenExpiry:  cfg.JWT.Expiration,
			RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
			Issuer:             "tapin-attendance-api",
		},
	})

	dashboardService := service.NewDashboardService(service.DashboardServiceParams{
		Events:     eventRepo,
		Students:   studentRepo,
		Attendance: attendanceRepo,
		Logger:     logr,
		Location:   orgLocation,
		Config: service.DashboardServiceConfig{
			RecentCheckInsLimit: cfg.Dashboard.RecentCheckInsLimit,
		},
	})

	eventService := service.NewEventService(service.EventServiceParams{
		Events:     eventRepo,
		Attendance: attendanceRepo,
		Cache:      cacheService,
		Validator:  validate,
		Logger:     logr,
		Location:   orgLocation,
		ListTTL:    cfg.Dashboard.ListCacheTTL,
	})

	attendanceService := service.NewAttendanceService(service.AttendanceServiceParams{
		Orgs:       orgRepo,
		Events:     eventRepo,
		Students:   studentRepo,
		Attendance: attendanceRepo,
		Metrics:    metricsService,
		Validator:  validate,
		Logger:     logr,
		Location:   orgLocation,
	})

	studentService := service.NewStudentService(service.StudentServiceParams{
		Students:   studentRepo,
		Events:     eventRepo,
		Attendance: attendanceRepo,
		Logger:     logr,
		Location:   orgLocation,
	})

	accountService := service.NewAccountService(studentRepo, userRepo, logr, service.AccountServiceConfig{
		TempPasswordLength: cfg.Accounts.TempPasswordLength,
		UsernamePrefix:     cfg.Accounts.UsernamePrefix,
	})

	insightService := service.NewInsightService(service.InsightServiceParams{
		Insights:  insightRepo,
		Events:    eventRepo,
		Cache:     cacheService,
		Validator: validate,
		Logger:    logr,
		Enabled:   cfg.Insights.Enabled,
	})

	exportService := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), orgLocation)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export archive", "error", err)
	}
	exportSigner := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Exports.DownloadTTL)
	archiveService := service.NewExportArchiveService(exportStore, exportSigner, logr, service.ExportArchiveConfig{
		Workers:   2,
		RetainFor: cfg.Exports.RetainFor,
	})
	archiveService.Start(context.Background())
	defer archiveService.Stop()

	authHandler := handler.NewAuthHandler(authService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	eventHandler := handler.NewEventHandler(eventService, exportService, archiveService)
	exportHandler := handler.NewExportHandler(archiveService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	studentHandler := handler.NewStudentHandler(studentService)
	accountHandler := handler.NewAccountHandler(accountService)
	insightHandler := handler.NewInsightHandler(insightService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
	}

	api.GET("/exports/:token", exportHandler.Download)

	api.POST("/attendance/check-in",
		middleware.ReaderRateLimit(cacheRepo, cfg.CheckIn.RateLimitPerMinute, logr),
		attendanceHandler.CheckIn,
	)

	org := api.Group("")
	org.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleOrganization))
	{
		org.GET("/dashboard/analytics", dashboardHandler.Analytics)
		org.GET("/dashboard/overview", dashboardHandler.Overview)

		org.POST("/events", eventHandler.Create)
		org.GET("/events", eventHandler.List)
		org.GET("/events/:id", eventHandler.Get)
		org.PUT("/events/:id", eventHandler.Update)
		org.PATCH("/events/:id/active", eventHandler.SetActive)
		org.GET("/events/:id/report", eventHandler.Report)

		org.GET("/attendance/feed", attendanceHandler.Feed)

		org.POST("/accounts/provision", accountHandler.Provision)

		org.POST("/insights", insightHandler.Ingest)
		org.GET("/insights", insightHandler.List)
	}

	student := api.Group("/students")
	student.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/me/portal", studentHandler.Portal)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}
