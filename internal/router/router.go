package router

import (
	"github.com/gin-gonic/gin"

	"billex/internal/config"
	"billex/internal/handler"
	"billex/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	extractH *handler.ExtractHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Root and health checks
	r.GET("/", healthH.Root)
	r.GET("/healthz", healthH.Liveness)

	// Extraction routes
	r.POST("/extract-bill-data", extractH.ExtractFromURL)
	r.POST("/extract-bill-data-file", extractH.ExtractFromFile)
	r.POST("/extract-bill-data/export", extractH.ExportToXLSX)

	return r
}
