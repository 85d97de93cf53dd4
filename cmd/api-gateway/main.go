package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/informaticaucm/seguimiento-api/api/swagger"
	"github.com/informaticaucm/seguimiento-api/internal/handler"
	"github.com/informaticaucm/seguimiento-api/internal/middleware"
	"github.com/informaticaucm/seguimiento-api/internal/repository"
	"github.com/informaticaucm/seguimiento-api/internal/service"
	"github.com/informaticaucm/seguimiento-api/pkg/cache"
	"github.com/informaticaucm/seguimiento-api/pkg/config"
	"github.com/informaticaucm/seguimiento-api/pkg/database"
	"github.com/informaticaucm/seguimiento-api/pkg/logger"
	corsmiddleware "github.com/informaticaucm/seguimiento-api/pkg/middleware/cors"
	reqidmiddleware "github.com/informaticaucm/seguimiento-api/pkg/middleware/requestid"
)

// @title Seguimiento API
// @version 1.0.0
// @description Classroom occupancy and teacher presence resolution
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Catalog.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalogue cache disabled", "error", err)
		}
	}

	validate := validator.New()

	activityRepo := repository.NewActivityRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	userRepo := repository.NewUserRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	presenceSvc := service.NewPresenceService(activityRepo, roomRepo, teacherRepo, cfg.Presence, metricsSvc, logr)
	roomSvc := service.NewRoomService(roomRepo, cacheSvc, logr)
	activitySvc := service.NewActivityService(activityRepo, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, presenceSvc, validate, logr)

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		reportSvc = service.NewReportService(activityRepo, roomRepo, teacherRepo, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	roomHandler := handler.NewRoomHandler(roomSvc, presenceSvc, reportSvc)
	activityHandler := handler.NewActivityHandler(activitySvc, presenceSvc)
	presenceHandler := handler.NewPresenceHandler(presenceSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/rooms", roomHandler.List)
	protected.GET("/rooms/:id", roomHandler.Get)
	protected.GET("/rooms/:id/activities", roomHandler.Activities)
	protected.GET("/rooms/:id/report", roomHandler.Report)

	protected.GET("/activities/:id", activityHandler.Get)
	protected.GET("/activities/:id/rooms", activityHandler.Rooms)
	protected.GET("/activities/:id/recurrences", activityHandler.Recurrences)
	protected.GET("/activities/:id/exceptions", activityHandler.Exceptions)
	protected.GET("/recurrences/:id", activityHandler.GetRecurrence)
	protected.GET("/exceptions/:id", activityHandler.GetException)

	protected.POST("/teachers/:id/rooms", presenceHandler.ResolveRooms)
	protected.GET("/teachers/:id/presence", presenceHandler.Presence)
	protected.GET("/teachers/:id/attendances", attendanceHandler.ListByTeacher)

	protected.POST("/attendances", attendanceHandler.Create)
	protected.GET("/attendances/:id", attendanceHandler.Get)
	protected.POST("/attendances/:id", attendanceHandler.Update)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
