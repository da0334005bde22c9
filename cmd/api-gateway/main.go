package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/intisuite/aula-api/api/swagger"
	"github.com/intisuite/aula-api/internal/handler"
	"github.com/intisuite/aula-api/internal/middleware"
	"github.com/intisuite/aula-api/internal/repository"
	"github.com/intisuite/aula-api/internal/service"
	"github.com/intisuite/aula-api/pkg/cache"
	"github.com/intisuite/aula-api/pkg/config"
	"github.com/intisuite/aula-api/pkg/database"
	"github.com/intisuite/aula-api/pkg/logger"
	corsmiddleware "github.com/intisuite/aula-api/pkg/middleware/cors"
	reqidmiddleware "github.com/intisuite/aula-api/pkg/middleware/requestid"
)

// @title Aula API
// @version 1.0.0
// @description Attendance and grading backend for course offerings
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

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Reports.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, cacheRepo != nil)

	blockRepo := repository.NewBlockRepository(db)
	assignmentRepo := repository.NewBlockAssignmentRepository(db)
	sessionRepo := repository.NewClassSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	validate := validator.New()

	window := service.NewTimeWindowCalculator(service.SystemClock, cfg.Attendance.DefaultTimezone)
	accessSvc := service.NewAccessService(blockRepo, assignmentRepo, logr)
	attendanceSvc := service.NewAttendanceService(sessionRepo, attendanceRepo, accessSvc, window, cacheSvc, validate, service.SystemClock, logr)
	gradeSvc := service.NewGradeService(evaluationRepo, gradeRepo, enrollmentRepo, enrollmentRepo, blockRepo, accessSvc, userRepo, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, accessSvc, userRepo, logr)
	exportSvc := service.NewExportService(gradeSvc, nil, nil, logr)

	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	systemHandler := handler.NewSystemHandler(metricsSvc)

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
		start := time.Now()
		err := db.Ping()
		metricsSvc.ObserveDBQuery("ping", time.Since(start))
		if err != nil {
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
	api.Use(middleware.Identity())
	{
		api.POST("/attendances/bulk", attendanceHandler.RegisterBulk)
		api.GET("/blocks/:id/attendances", attendanceHandler.FindByBlock)
		api.GET("/blocks/:id/students", enrollmentHandler.BlockStudents)
		api.GET("/blocks/:id/class-sessions", attendanceHandler.BlockSessions)
		api.GET("/class-sessions/:id/window", attendanceHandler.SessionWindow)

		api.POST("/grades/bulk", gradeHandler.RegisterBulk)
		api.GET("/enrollments/:id/blocks/:blockId/grades", gradeHandler.StudentBlockGrades)
		api.GET("/course-offerings/:id/scores", gradeHandler.CourseScores)
		api.GET("/course-offerings/:id/scores/export", exportHandler.CourseScoresExport)

		api.GET("/system/metrics", systemHandler.Metrics)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
