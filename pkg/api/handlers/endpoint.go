package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aiforge-platform/aiforge-backend/pkg/api/dtos"
	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/aiforge-platform/aiforge-backend/pkg/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EndpointHandler struct {
	DeploymentService *services.DeploymentService
}

func NewEndpointHandler(deploymentService *services.DeploymentService) *EndpointHandler {
	return &EndpointHandler{
		DeploymentService: deploymentService,
	}
}

func (h *EndpointHandler) Deploy(c *gin.Context) {
	id := c.Param("id")
	endpointID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	var request dtos.DeployEndpointRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	endpoint, err := toEndpointEntity(endpointID, &request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The attempt outlives this request; it must not inherit the request
	// context's cancellation.
	err = h.DeploymentService.Deploy(context.Background(), endpoint, request.ToDeploymentRequest(endpointID))
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "OK", "endpointId": endpointID})
}

func (h *EndpointHandler) GetAllEndpoints(c *gin.Context) {
	endpoints, err := h.DeploymentService.GetAllEndpoints()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoints": endpoints})
}

func (h *EndpointHandler) GetEndpointByID(c *gin.Context) {
	endpointID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}
	endpoint, err := h.DeploymentService.GetEndpointByID(endpointID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoint": endpoint})
}

func (h *EndpointHandler) GetEndpointStatus(c *gin.Context) {
	endpointID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}
	endpoint, err := h.DeploymentService.GetEndpointByID(endpointID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dtos.EndpointStatusResponse{
		Status:       endpoint.Status,
		ErrorMessage: endpoint.ErrorMessage,
		ServiceURL:   endpoint.ServiceURL,
		DeployedAt:   endpoint.DeployedAt,
	})
}

func (h *EndpointHandler) GetEndpointLogs(c *gin.Context) {
	endpointID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}
	logs, err := h.DeploymentService.GetBuildLog(endpointID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// toEndpointEntity snapshots the request as the endpoint record. Secrets are
// scrubbed from the stored config copy.
func toEndpointEntity(endpointID uuid.UUID, request *dtos.DeployEndpointRequest) (*entities.EndpointEntity, error) {
	scrubbed := *request
	scrubbed.APIKey = ""
	scrubbed.AccessToken = ""
	configJSON, err := json.Marshal(scrubbed)
	if err != nil {
		return nil, err
	}
	return &entities.EndpointEntity{
		ID:             endpointID,
		Name:           request.Name,
		UserID:         request.UserID,
		ProjectID:      request.ProjectID,
		Framework:      request.Framework,
		DeploymentType: request.DeploymentType,
		APIKey:         request.APIKey,
		Config:         configJSON,
	}, nil
}
