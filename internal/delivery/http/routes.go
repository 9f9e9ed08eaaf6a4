package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dermalens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Operational endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(RateLimitMiddleware(NewRateLimiter(cfg.RateLimit.PerIP)))
	}
	{
		v1.POST("/evaluations", handler.Evaluate)
		v1.POST("/recommendations", handler.Recommend)
		v1.GET("/concerns", handler.ListConcerns)

		routine := v1.Group("/routine")
		{
			routine.POST("/assessment", handler.AssessRoutine)
		}

		dataset := v1.Group("/dataset")
		{
			dataset.GET("/summary", handler.DatasetSummary)
			dataset.GET("/preview", handler.DatasetPreview)
		}
	}

	return router
}
