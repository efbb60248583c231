package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/api/handlers"
	"github.com/forte-savings/backend/internal/api/middleware"
	"github.com/forte-savings/backend/internal/config"
	"github.com/forte-savings/backend/internal/logger"
	"github.com/forte-savings/backend/internal/metrics"
	"github.com/forte-savings/backend/internal/models"
	"github.com/forte-savings/backend/internal/services"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectPermission{},
		&models.SavingsRecord{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	// Wrong method on a known path is 405, not gin's default 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "error": "Method not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
	})

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery(cfg.Environment == "development"))
	router.Use(middleware.SecurityHeaders(cfg.Environment == "development"))

	router.GET("/api/v1/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")

	// Rate limiting: Redis when configured so counters are shared across
	// instances, in-process store otherwise.
	if !cfg.RateLimitDisabled {
		var store middleware.CounterStore
		if cfg.RedisAddr != "" {
			redisStore, err := middleware.NewRedisCounterStore(cfg.RedisAddr, cfg.RedisPassword)
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			store = redisStore
		} else {
			logger.Log().Warn("no redis configured, rate limit counters are per-process")
			store = middleware.NewMemoryCounterStore()
		}
		api.Use(middleware.RateLimit(store, cfg.RateLimitPerMin))
	}

	auditService := services.NewAuditService(db)
	authService := services.NewAuthService(db, cfg)
	authHandler := handlers.NewAuthHandler(authService, auditService)
	authMiddleware := middleware.AuthMiddleware(authService)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)

	protected := api.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		projectHandler := handlers.NewProjectHandler(services.NewProjectService(db), auditService)
		projectHandler.RegisterRoutes(protected)

		savingsHandler := handlers.NewSavingsHandler(services.NewSavingsService(db), auditService)
		savingsHandler.RegisterRoutes(protected)

		dashboardHandler := handlers.NewDashboardHandler(db)
		dashboardHandler.RegisterRoutes(protected)

		reportHandler := handlers.NewReportHandler(db, auditService)
		reportHandler.RegisterRoutes(protected)

		admin := protected.Group("/")
		admin.Use(middleware.RequireAdmin())
		{
			userHandler := handlers.NewUserHandler(db, auditService)
			userHandler.RegisterRoutes(admin)

			monitoringHandler := handlers.NewMonitoringHandler(services.NewMonitoringService(db))
			monitoringHandler.RegisterRoutes(admin)
		}
	}

	return nil
}
