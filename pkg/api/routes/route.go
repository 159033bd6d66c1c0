package routes

import (
	"github.com/aiforge-platform/aiforge-backend/pkg/api/handlers"
	"github.com/aiforge-platform/aiforge-backend/pkg/api/servers"
	"github.com/aiforge-platform/aiforge-backend/pkg/services"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(server *servers.Server, deploymentService *services.DeploymentService) {
	apiV1 := server.Router.Group("/api/v1")
	setupV1Routes(apiV1, deploymentService)
}

func setupV1Routes(router *gin.RouterGroup, deploymentService *services.DeploymentService) {
	// Health routes
	setupHealthRoutes(router.Group("/health"))

	// Endpoint routes
	setupEndpointRoutes(router.Group("/endpoints"), deploymentService)
}

func setupHealthRoutes(router *gin.RouterGroup) {
	handler := handlers.NewHealthHandler()
	router.GET("", handler.GetHealth)
}

func setupEndpointRoutes(router *gin.RouterGroup, deploymentService *services.DeploymentService) {
	handler := handlers.NewEndpointHandler(deploymentService)
	router.GET("", handler.GetAllEndpoints)
	router.GET("/:id", handler.GetEndpointByID)
	router.GET("/:id/status", handler.GetEndpointStatus)
	router.GET("/:id/logs", handler.GetEndpointLogs)
	router.POST("/:id/deploy", handler.Deploy)
}
