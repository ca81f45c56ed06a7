package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mentorbridge/mentorbridge-backend/internal/handlers"
	"github.com/mentorbridge/mentorbridge-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware     *middleware.AuthMiddleware
	CatalogHandler     *handlers.CatalogHandler
	ProgressionHandler *handlers.ProgressionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("mentorbridge"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Catalog
	api.GET("/challenges", cfg.CatalogHandler.ListChallenges)
	api.GET("/challenges/:id", cfg.CatalogHandler.GetChallenge)
	api.GET("/objectives", cfg.CatalogHandler.ListObjectives)
	api.GET("/objectives/:id/links", cfg.CatalogHandler.ListObjectiveLinks)

	// Progression
	api.POST("/objectives/:id/select", cfg.ProgressionHandler.SelectObjective)
	api.GET("/objectives/:id/progress", cfg.ProgressionHandler.GetObjectiveProgress)
	api.DELETE("/objectives/:id/progress", cfg.ProgressionHandler.ClearObjective)
	api.POST("/progress/:id/complete", cfg.ProgressionHandler.CompleteChallenge)
	api.POST("/progress/:id/restart", cfg.ProgressionHandler.RestartChallenge)

	return router
}
