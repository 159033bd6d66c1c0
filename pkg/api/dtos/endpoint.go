package dtos

import (
	"errors"
	"time"

	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/gitrepo"
	"github.com/google/uuid"
)

// DeployEndpointRequest is the request body for starting a deployment
// attempt. Exactly one payload group must be populated, matching the declared
// deployment type.
type DeployEndpointRequest struct {
	Name           string                  `json:"name"           binding:"required"`
	UserID         string                  `json:"userId"         binding:"required"`
	ProjectID      string                  `json:"projectId"`
	Framework      entities.Framework      `json:"framework"      binding:"required"`
	DeploymentType entities.DeploymentType `json:"deploymentType" binding:"required"`
	APIKey         string                  `json:"apiKey"         binding:"required"`

	// SINGLE_FILE payload
	ModelFileKey        string `json:"modelFileKey"`
	RequirementsFileKey string `json:"requirementsFileKey"`
	InferenceFileKey    string `json:"inferenceFileKey"`

	// ZIP_ARCHIVE payload
	ArchiveKey string `json:"archiveKey"`

	// GIT_REPOSITORY payload
	RepoURL     string `json:"repoUrl"`
	Branch      string `json:"branch"`
	Commit      string `json:"commit"`
	AccessToken string `json:"accessToken"`
}

func (request *DeployEndpointRequest) Validate() error {
	if !request.Framework.Valid() {
		return errors.New("framework must be one of: sklearn, pytorch, tensorflow, onnx, custom")
	}
	if !request.DeploymentType.Valid() {
		return errors.New("deploymentType must be one of: SINGLE_FILE, ZIP_ARCHIVE, GIT_REPOSITORY")
	}

	switch request.DeploymentType {
	case entities.DeploymentTypeSingleFile:
		if request.ModelFileKey == "" {
			return errors.New("modelFileKey is required for SINGLE_FILE deployments")
		}
	case entities.DeploymentTypeZipArchive:
		if request.ArchiveKey == "" {
			return errors.New("archiveKey is required for ZIP_ARCHIVE deployments")
		}
	case entities.DeploymentTypeGitRepository:
		if request.RepoURL == "" {
			return errors.New("repoUrl is required for GIT_REPOSITORY deployments")
		}
		if _, err := gitrepo.ValidateURL(request.RepoURL); err != nil {
			return err
		}
	}

	return nil
}

// ToDeploymentRequest builds the immutable per-attempt input owned by the
// orchestrator.
func (request *DeployEndpointRequest) ToDeploymentRequest(endpointID uuid.UUID) *entities.DeploymentRequest {
	return &entities.DeploymentRequest{
		EndpointID:          endpointID,
		UserID:              request.UserID,
		ProjectID:           request.ProjectID,
		Framework:           request.Framework,
		DeploymentType:      request.DeploymentType,
		APIKey:              request.APIKey,
		ModelFileKey:        request.ModelFileKey,
		RequirementsFileKey: request.RequirementsFileKey,
		InferenceFileKey:    request.InferenceFileKey,
		ArchiveKey:          request.ArchiveKey,
		RepoURL:             request.RepoURL,
		Branch:              request.Branch,
		Commit:              request.Commit,
		AccessToken:         request.AccessToken,
	}
}

// EndpointStatusResponse is the polling surface for the UI. FAILED and
// DEPLOYED are terminal for the polling loop.
type EndpointStatusResponse struct {
	Status       entities.DeploymentStatus `json:"status"`
	ErrorMessage string                    `json:"errorMessage,omitempty"`
	ServiceURL   string                    `json:"serviceUrl,omitempty"`
	DeployedAt   *time.Time                `json:"deployedAt,omitempty"`
}
