package router

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"reddit-persona/cmd/api/handlers"
	"reddit-persona/cmd/api/middleware"
	"reddit-persona/cmd/api/services"
	_ "reddit-persona/docs"
)

type Deps struct {
	Generations handlers.Generations
	Artifacts   *services.ArtifactService
	// MongoPing 이 nil 이면 /health 는 Mongo 상태를 보고하지 않는다.
	MongoPing func(ctx context.Context) error
}

func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace())

	// Health check
	health := handlers.HealthHandler(deps.Generations, deps.MongoPing)
	r.GET("/health", health)

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/health", health)

		api.POST("/generations", handlers.StartGenerationHandler(deps.Generations))
		api.GET("/generations/progress", handlers.GetProgressHandler(deps.Generations))
		api.GET("/generations/stream", handlers.StreamProgressHandler(deps.Generations))
		api.POST("/generations/reset", handlers.ResetGenerationHandler(deps.Generations))

		api.GET("/artifacts", handlers.ListArtifactsHandler(deps.Artifacts))
		api.GET("/artifacts/:id", handlers.GetArtifactHandler(deps.Artifacts))
		api.GET("/artifacts/:id/persona", handlers.DownloadArtifactHandler(deps.Artifacts, services.FilePersona))
		api.GET("/artifacts/:id/data", handlers.DownloadArtifactHandler(deps.Artifacts, services.FileData))
	}

	return r
}
