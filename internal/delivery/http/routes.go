package http

import (
	"github.com/gin-gonic/gin"

	"github.com/vendorlens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIPPerMinute, cfg.RateLimit.Burst))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Document parsing endpoints
		parse := v1.Group("/parse")
		{
			parse.POST("/extract", handler.ExtractFields)
			parse.POST("/match", handler.MatchBusiness)
			parse.POST("/scan", handler.ScanDocument)
			parse.POST("/confirm", handler.ConfirmMatch)
		}

		// Catalog management endpoints
		businesses := v1.Group("/businesses")
		{
			businesses.GET("", handler.ListBusinesses)
			businesses.POST("", handler.CreateBusiness)
			businesses.DELETE("/:id", handler.DeleteBusiness)
			businesses.POST("/:id/keywords", handler.AddKeyword)
		}

		projects := v1.Group("/projects")
		{
			projects.GET("", handler.ListProjects)
			projects.POST("", handler.CreateProject)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", handler.ListCategories)
			categories.POST("", handler.CreateCategory)
		}
	}

	return router
}
