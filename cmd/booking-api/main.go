package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dermaplan/booking-api/api/swagger"
	"github.com/dermaplan/booking-api/internal/handler"
	"github.com/dermaplan/booking-api/internal/middleware"
	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/internal/repository"
	"github.com/dermaplan/booking-api/internal/service"
	"github.com/dermaplan/booking-api/pkg/cache"
	"github.com/dermaplan/booking-api/pkg/config"
	"github.com/dermaplan/booking-api/pkg/database"
	"github.com/dermaplan/booking-api/pkg/export"
	"github.com/dermaplan/booking-api/pkg/jobs"
	"github.com/dermaplan/booking-api/pkg/logger"
	corsmiddleware "github.com/dermaplan/booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dermaplan/booking-api/pkg/middleware/requestid"
	"github.com/dermaplan/booking-api/pkg/storage"
)

// @title Dermaplan Booking API
// @version 1.0.0
// @description Clinic booking platform: public booking wizard endpoints and the admin console API.
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled)
	} else {
		cacheService = service.NewCacheService(nil, metricsService, cfg.Dashboard.CacheTTL, logr, false)
	}

	appointmentRepo := repository.NewAppointmentRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	userRepo := repository.NewUserRepository(db)
	exportRepo := repository.NewExportRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "booking-api",
	})
	availabilityService := service.NewAvailabilityService(settingsRepo, serviceRepo, appointmentRepo, metricsService, logr)
	bookingService := service.NewBookingService(serviceRepo, staffRepo, appointmentRepo, cacheService, metricsService, logr)
	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo, cacheService, logr)
	catalogService := service.NewServiceCatalogService(serviceRepo, userRepo, validate, logr)
	staffService := service.NewStaffService(staffRepo, userRepo, validate, logr)
	customerService := service.NewCustomerService(customerRepo, logr)
	settingsService := service.NewSettingsService(settingsRepo, userRepo, validate, logr)
	dashboardService := service.NewDashboardService(appointmentRepo, settingsRepo, metricsService, cacheService, logr, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})
	rolloutService := service.NewRolloutService(cfg.Rollout, metricsService)

	var exportJobService *service.ExportJobService
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService := service.NewExportService(appointmentRepo, customerRepo, fileStore, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, export.NewCSVExporter(), export.NewPDFExporter())

		worker := service.NewExportWorker(exportRepo, exportService, cfg.Exports.WorkerRetries, logr)
		exportQueue = jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportQueue.Start(ctx)
		defer exportQueue.Stop()

		exportJobService = service.NewExportJobService(exportRepo, exportQueue, exportService, logr, service.ExportJobServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportJobService.RecoverPendingJobs(ctx)
		exportJobService.StartCleanup(ctx)
	}

	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	appointmentHandler := handler.NewAppointmentHandler(bookingService, appointmentService)
	serviceHandler := handler.NewServiceHandler(catalogService)
	staffHandler := handler.NewStaffHandler(staffService)
	customerHandler := handler.NewCustomerHandler(customerService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	authHandler := handler.NewAuthHandler(authService)
	rolloutHandler := handler.NewRolloutHandler(rolloutService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.RolloutStage(rolloutService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public booking wizard endpoints (legacy wire shapes).
	api.GET("/availability", availabilityHandler.Get)
	api.POST("/appointments", appointmentHandler.Book)
	api.GET("/services", serviceHandler.ListPublic)
	api.GET("/staff", staffHandler.ListPublic)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	authed := auth.Group("", middleware.JWT(authService))
	authed.POST("/logout", authHandler.Logout)
	authed.POST("/change-password", authHandler.ChangePassword)
	authed.GET("/me", authHandler.Me)

	admin := api.Group("/admin", middleware.JWT(authService), middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleReception))
	admin.GET("/appointments", appointmentHandler.List)
	admin.GET("/appointments/:id", appointmentHandler.Get)
	admin.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
	admin.GET("/customers", customerHandler.List)
	admin.GET("/customers/:id", customerHandler.Get)
	admin.GET("/customers/:id/appointments", customerHandler.History)
	admin.GET("/dashboard", dashboardHandler.Summary)
	admin.GET("/dashboard/system", dashboardHandler.SystemMetrics)
	admin.GET("/rollout/health", rolloutHandler.Health)

	manage := api.Group("/admin", middleware.JWT(authService), middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	manage.GET("/services", serviceHandler.List)
	manage.POST("/services", serviceHandler.Create)
	manage.GET("/services/:id", serviceHandler.Get)
	manage.PUT("/services/:id", serviceHandler.Update)
	manage.DELETE("/services/:id", serviceHandler.Deactivate)
	manage.GET("/staff", staffHandler.List)
	manage.POST("/staff", staffHandler.Create)
	manage.GET("/staff/:id", staffHandler.Get)
	manage.PUT("/staff/:id", staffHandler.Update)
	manage.DELETE("/staff/:id", staffHandler.Deactivate)
	manage.GET("/settings", settingsHandler.Get)
	manage.PUT("/settings", settingsHandler.Update)

	if exportJobService != nil {
		exportHandler := handler.NewExportHandler(exportJobService)
		manage.POST("/exports", middleware.Audit(userRepo, models.AuditActionExportRequest, "export_job"), exportHandler.Create)
		manage.GET("/exports/status/:id", exportHandler.Status)
		// Download links carry their own signed token, no session required.
		api.GET("/admin/exports/download/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
