package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/richwell/registrar-api/api/swagger"
	"github.com/richwell/registrar-api/internal/handler"
	"github.com/richwell/registrar-api/internal/middleware"
	"github.com/richwell/registrar-api/internal/repository"
	"github.com/richwell/registrar-api/internal/scheduler"
	"github.com/richwell/registrar-api/internal/service"
	"github.com/richwell/registrar-api/pkg/cache"
	"github.com/richwell/registrar-api/pkg/config"
	"github.com/richwell/registrar-api/pkg/database"
	"github.com/richwell/registrar-api/pkg/logger"
	corsmiddleware "github.com/richwell/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/richwell/registrar-api/pkg/middleware/requestid"
)

// @title Registrar Progression API
// @version 1.0.0
// @description Academic progression and enrollment eligibility engine
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	curriculumRepo := repository.NewCurriculumRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	termRepo := repository.NewTermRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	var cacheRepo *repository.CacheRepository
	if cfg.Eligibility.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, eligibility caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	curriculumSvc := service.NewCurriculumService(curriculumRepo, logr)
	policySvc := service.NewPolicyService(settingsRepo, cfg.Enrollment, cfg.Sweep, logr)

	// A typed nil *CacheRepository must not reach the service as a non-nil
	// interface, hence the explicit branch.
	var eligibilitySvc *service.EligibilityService
	if cacheRepo != nil {
		eligibilitySvc = service.NewEligibilityService(curriculumSvc, studentRepo, termRepo, recordRepo, policySvc, cacheRepo, cfg.Eligibility.CacheTTL, metricsSvc, logr)
	} else {
		eligibilitySvc = service.NewEligibilityService(curriculumSvc, studentRepo, termRepo, recordRepo, policySvc, nil, cfg.Eligibility.CacheTTL, metricsSvc, logr)
	}

	enrollmentSvc := service.NewEnrollmentService(curriculumSvc, studentRepo, termRepo, recordRepo, policySvc, enrollmentRepo, auditRepo, eligibilitySvc, validate, metricsSvc, logr)
	incompleteSvc := service.NewIncompleteService(recordRepo, policySvc, auditRepo, eligibilitySvc, metricsSvc, logr)

	eligibilityHandler := handler.NewEligibilityHandler(eligibilitySvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	lifecycleHandler := handler.NewLifecycleHandler(incompleteSvc)
	auditHandler := handler.NewAuditHandler(auditRepo)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/students/:id/available-subjects", eligibilityHandler.AvailableSubjects)
		api.GET("/students/:id/subjects/:subjectId/prerequisites", eligibilityHandler.CheckPrerequisites)
		api.POST("/students/:id/enrollments", enrollmentHandler.Create)
		api.POST("/lifecycle/incomplete-sweep", lifecycleHandler.SweepIncomplete)
		api.GET("/audit/:entity/:entityId", auditHandler.ListByEntity)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sweep.Enabled {
		sweepScheduler, err := scheduler.NewSweepScheduler(incompleteSvc, cfg.Sweep, logr)
		if err != nil {
			logr.Fatal("failed to build sweep scheduler", zap.Error(err))
		}
		sweepScheduler.Start(ctx)
		defer sweepScheduler.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
