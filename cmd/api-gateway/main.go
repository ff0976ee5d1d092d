package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/venuehub/allocation-api/api/swagger"
	"github.com/venuehub/allocation-api/internal/handler"
	"github.com/venuehub/allocation-api/internal/middleware"
	"github.com/venuehub/allocation-api/internal/models"
	"github.com/venuehub/allocation-api/internal/repository"
	"github.com/venuehub/allocation-api/internal/service"
	"github.com/venuehub/allocation-api/pkg/cache"
	"github.com/venuehub/allocation-api/pkg/config"
	"github.com/venuehub/allocation-api/pkg/database"
	"github.com/venuehub/allocation-api/pkg/jobs"
	"github.com/venuehub/allocation-api/pkg/logger"
	corsmiddleware "github.com/venuehub/allocation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/venuehub/allocation-api/pkg/middleware/requestid"
	"github.com/venuehub/allocation-api/pkg/storage"
)

// @title Seasonal Allocation API
// @version 0.1.0
// @description Allocation calendar and decision engine for seasonal application rounds
// @BasePath /
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

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheEnabled := cfg.Cache.Enabled
	var cacheRepo service.CacheRepository
	if cacheEnabled {
		redisClient, redisErr := cache.NewRedis(cfg.Redis)
		if redisErr != nil {
			logr.Sugar().Warnw("redis unavailable, cache disabled", "error", redisErr)
			cacheEnabled = false
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			cacheRepo = repo
			defer repo.Close()
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheEnabled)

	roundRepo := repository.NewRoundRepository(db)
	eventRepo := repository.NewApplicationEventRepository(db)
	resultRepo := repository.NewScheduleResultRepository(db)

	authSvc := service.NewAuthService(cfg.JWT.Secret)
	selectionSvc := service.NewSelectionService(eventRepo, cfg.Allocation.SelectionTTL, metricsSvc, validate, logr)
	allocationSvc := service.NewAllocationService(eventRepo, resultRepo, roundRepo, selectionSvc, cacheSvc, metricsSvc, validate, logr)
	viewSvc := service.NewAllocationViewService(roundRepo, eventRepo, allocationSvc, cacheSvc, cfg.Allocation.FirstHour, cfg.Allocation.LastHour, logr)

	allocationHandler := handler.NewAllocationHandler(viewSvc, allocationSvc, selectionSvc)
	selectionHandler := handler.NewSelectionHandler(selectionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	allocate := middleware.RequireRoles(models.RoleAdmin, models.RoleAllocator)

	api.GET("/application-rounds/:id/status", allocationHandler.RoundStatus)
	api.GET("/application-rounds/:id/reservation-units/:unitId/events", allocationHandler.UnitEvents)
	api.GET("/application-rounds/:id/reservation-units/:unitId/grid", allocationHandler.Grid)

	api.POST("/selection/begin", allocate, selectionHandler.Begin)
	api.POST("/selection/extend", allocate, selectionHandler.Extend)
	api.POST("/selection/finish", allocate, selectionHandler.Finish)
	api.POST("/selection/range", allocate, selectionHandler.SetRange)
	api.DELETE("/selection", allocate, selectionHandler.Clear)

	api.POST("/allocations", allocate, allocationHandler.Accept)
	api.POST("/allocations/decline", allocate, allocationHandler.Decline)

	if cfg.Reports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

		var reportSvc *service.ReportService
		queue := jobs.NewQueue("reports", func(ctx context.Context, job jobs.Job) error {
			return reportSvc.Process(ctx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportSvc = service.NewReportService(eventRepo, roundRepo, queue, files, signer, validate, logr)

		ctx := context.Background()
		queue.Start(ctx)
		defer queue.Stop()
		reportSvc.StartCleanup(ctx, cfg.Reports.CleanupInterval, cfg.Reports.SignedURLTTL)

		reportHandler := handler.NewReportHandler(reportSvc)
		api.POST("/reports/allocations", allocate, reportHandler.Create)
		api.GET("/reports/:id", reportHandler.Status)
		r.GET("/reports/download", reportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
