package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/greenscanner/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	v1.Use(BodyLimitMiddleware(cfg.Server.MaxBodyBytes))
	{
		tools := v1.Group("/tools")
		{
			tools.GET("", handler.ListTools)
			tools.POST("/"+ToolName, handler.FindSustainableAlternative)
		}

		products := v1.Group("/products")
		{
			products.POST("/lookup", handler.LookupProduct)
		}
	}

	return router
}
