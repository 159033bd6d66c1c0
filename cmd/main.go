package main

import (
	"context"
	"log"

	"github.com/aiforge-platform/aiforge-backend/internal/config"
	"github.com/aiforge-platform/aiforge-backend/internal/logger"
	"github.com/aiforge-platform/aiforge-backend/pkg/api/routes"
	"github.com/aiforge-platform/aiforge-backend/pkg/api/servers"
	"github.com/aiforge-platform/aiforge-backend/pkg/infrastructure/gcloud"
	"github.com/aiforge-platform/aiforge-backend/pkg/infrastructure/gcs"
	"github.com/aiforge-platform/aiforge-backend/pkg/infrastructure/postgres/connection"
	"github.com/aiforge-platform/aiforge-backend/pkg/infrastructure/postgres/repositories"
	"github.com/aiforge-platform/aiforge-backend/pkg/services"
	"github.com/aiforge-platform/aiforge-backend/pkg/taskmanager"

	"github.com/gin-contrib/cors"
	"go.uber.org/zap"
)

func main() {
	logger.Init()

	env, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load environment", zap.Error(err))
	}
	logger.Infof("%s", env)

	postgresDB, err := connection.Init(
		env.PostgresUser,
		env.PostgresHost,
		env.PostgresPassword,
		env.PostgresDB,
		env.PostgresPort,
	)
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}

	storageClient, err := gcs.NewClient(context.Background())
	if err != nil {
		logger.Fatal("Failed to create storage client", zap.Error(err))
	}
	defer storageClient.Close()

	runner := gcloud.NewCommandRunner()
	dockerClient := gcloud.NewDockerClient(runner)
	cloudRunClient := gcloud.NewCloudRunClient(runner, env.GoogleCloudProject, env.CloudRunRegion)

	deploymentService := services.NewDeploymentService(
		env,
		repositories.NewEndpointRepository(postgresDB),
		storageClient,
		dockerClient,
		cloudRunClient,
		taskmanager.NewTaskManager(env.DeployWorkerCount, env.DeployTaskQueueLen),
	)

	server := servers.NewServer(postgresDB)
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"*"}

	server.Use(cors.New(corsConfig))

	routes.SetupRoutes(server, deploymentService)

	err = server.Start(env.Port)
	if err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		log.Fatal(err)
	}
}
