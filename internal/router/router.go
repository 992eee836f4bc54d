package router

import (
	"github.com/gin-gonic/gin"

	"finextract/internal/handler"
	"finextract/internal/middleware"
)

// Options configures global middleware.
type Options struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	extractionH *handler.ExtractionHandler,
	healthH *handler.HealthHandler,
	opts Options,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.GET("/", healthH.Info)
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	extractions := v1.Group("/extractions")
	extractions.POST("", middleware.MaxBodySize(opts.MaxBodyBytes), extractionH.Create)
	extractions.GET("", extractionH.List)
	extractions.GET("/:id", extractionH.GetByID)
	extractions.GET("/:id/report", extractionH.Report)

	return r
}
