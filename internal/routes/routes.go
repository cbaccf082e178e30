package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"roster/internal/config"
	"roster/internal/controllers"
)

// SetupRouter initializes all controllers and API routes
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	companyController := controllers.CompanyController{
		DB:        db,
		Table:     cfg.TableName,
		KeyColumn: cfg.KeyColumn,
		Schema:    cfg.FinalSchema,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	api := router.Group("/api/v1")
	{
		// GET /api/v1/companies?limit=&<column>=
		api.GET("/companies", companyController.GetCompanies)
		// GET /api/v1/companies/:key looks up by the configured key column
		api.GET("/companies/:key", companyController.GetCompany)
		// GET /api/v1/runs
		api.GET("/runs", companyController.GetRuns)
	}

	return router
}
