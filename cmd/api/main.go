package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/jcondori/biblioteca-api/api/swagger"
	"github.com/jcondori/biblioteca-api/internal/handler"
	"github.com/jcondori/biblioteca-api/internal/middleware"
	"github.com/jcondori/biblioteca-api/internal/repository"
	"github.com/jcondori/biblioteca-api/internal/service"
	"github.com/jcondori/biblioteca-api/pkg/cache"
	"github.com/jcondori/biblioteca-api/pkg/config"
	"github.com/jcondori/biblioteca-api/pkg/database"
	"github.com/jcondori/biblioteca-api/pkg/logger"
	corsmiddleware "github.com/jcondori/biblioteca-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jcondori/biblioteca-api/pkg/middleware/requestid"
)

// @title Biblioteca API
// @version 1.0.0
// @description Inventory and circulation backend for a university library
// @BasePath /api
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

	validate := validator.New()

	assetRepo := repository.NewAssetRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	historialRepo := repository.NewHistorialRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "biblioteca-api",
	})
	historialService := service.NewHistorialService(historialRepo, assetRepo, validate, logr)
	dashboardService := service.NewDashboardService(assetRepo, loanRepo, cacheService, metricsService, logr, cfg.Dashboard.CacheTTL)
	assetService := service.NewAssetService(assetRepo, historialService, validate, logr, dashboardService)
	studentService := service.NewStudentService(studentRepo, validate, logr)
	loanService := service.NewLoanService(loanRepo, studentRepo, assetRepo, validate, logr, cfg.Circulation.TakeHomeDays, dashboardService)
	circulationService := service.NewCirculationService(loanService, studentRepo, assetRepo, logr, cfg.Circulation.SessionTTL)
	exportService := service.NewExportService(loanRepo, logr, cfg.Reports.MaxRows, nil, nil)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

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

	metricsHandler := handler.NewMetricsHandler(metricsService)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Assets:      handler.NewAssetHandler(assetService),
		Students:    handler.NewStudentHandler(studentService),
		Loans:       handler.NewLoanHandler(loanService, exportService),
		Circulation: handler.NewCirculationHandler(circulationService),
		Dashboard:   handler.NewDashboardHandler(dashboardService),
		Historial:   handler.NewHistorialHandler(historialService),
		Metrics:     metricsHandler,
	}, authService)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
