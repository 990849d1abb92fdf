package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/visai-labs/extraction-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "extraction-api-service",
		})
	})

	extractionHandler := handler.NewExtractionHandler(deps)

	api := r.Group("/api")
	{
		// POST /api/upload - Accept a document image for extraction
		api.POST("/upload", extractionHandler.Upload)

		// GET /api/result/:extraction_id - Poll extraction state
		api.GET("/result/:extraction_id", extractionHandler.Result)

		// POST /api/verify - Validate a field map, no side effects
		api.POST("/verify", extractionHandler.Verify)

		// POST /api/submit - Record verified fields
		api.POST("/submit", extractionHandler.Submit)
	}

	return r
}
