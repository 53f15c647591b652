package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-timetable-api/api/swagger"
	"github.com/noah-isme/school-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/school-timetable-api/internal/middleware"
	"github.com/noah-isme/school-timetable-api/internal/models"
	"github.com/noah-isme/school-timetable-api/internal/repository"
	"github.com/noah-isme/school-timetable-api/internal/service"
	"github.com/noah-isme/school-timetable-api/pkg/cache"
	"github.com/noah-isme/school-timetable-api/pkg/config"
	"github.com/noah-isme/school-timetable-api/pkg/database"
	"github.com/noah-isme/school-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-timetable-api/pkg/middleware/requestid"
)

// @title School Timetable API
// @version 1.0.0
// @description Timetable generation, validation and manual editing for school classes.
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

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Cache.Enabled)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	retry := database.RetryPolicy{Attempts: cfg.Scheduler.StoreRetryAttempts, Delay: cfg.Scheduler.StoreRetryDelay}

	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.ComplexityTTL, logr, redisClient != nil)
	complexitySvc := service.NewComplexityService(subjectRepo, cacheSvc, retry, logr)
	conflicts := service.NewConflictChecker(scheduleRepo)
	sanpin := service.NewSanPinValidator(classRepo, subjectRepo, teacherRepo, complexitySvc, conflicts, scheduleRepo, metrics, logr)
	generatorSvc := service.NewScheduleGeneratorService(
		classRepo,
		subjectRepo,
		teacherRepo,
		calendarRepo,
		scheduleRepo,
		complexitySvc,
		db,
		validate,
		metrics,
		logr,
		service.ScheduleGeneratorConfig{
			DefaultWeeks:      cfg.Scheduler.DefaultWeeks,
			WeeklyGrade1Slots: cfg.Scheduler.WeeklyGrade1Slots,
			Retry:             retry,
		},
	)
	scheduleSvc := service.NewScheduleService(scheduleRepo, sanpin, teacherRepo, db, validate, logr)
	exportSvc := service.NewExportService(scheduleSvc, logr)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	generatorHandler := handler.NewScheduleGeneratorHandler(generatorSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
		"database": classRepo,
		"redis":    cacheRepo,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(apiPrefix(cfg.APIPrefix))
	api.Use(internalmiddleware.JWT(tokenSvc))
	writers := internalmiddleware.RBAC(models.RoleAdmin, models.RoleSuperAdmin)

	schedule := api.Group("/schedule")
	schedule.GET("", scheduleHandler.List)
	schedule.GET("/semester", scheduleHandler.ListSemester)
	schedule.GET("/semester/export", scheduleHandler.ExportSemester)
	schedule.GET("/standard-curriculum/:grade", generatorHandler.StandardCurriculum)
	schedule.POST("/validate", scheduleHandler.Validate)

	schedule.POST("", writers, scheduleHandler.Create)
	schedule.PUT("/:id", writers, scheduleHandler.Update)
	schedule.DELETE("/:id", writers, scheduleHandler.Delete)
	schedule.PUT("/lesson/:id", writers, scheduleHandler.UpdateLesson)
	schedule.POST("/substitution", writers, scheduleHandler.SetSubstitution)
	schedule.DELETE("/substitution/:id", writers, scheduleHandler.ClearSubstitution)
	schedule.POST("/generate", writers, generatorHandler.Generate)
	schedule.POST("/generate-semester", writers, generatorHandler.GenerateSemester)
	schedule.DELETE("/classes/:classId/periods/:periodId", writers, generatorHandler.ClearSchedule)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func apiPrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "/api/v1"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
