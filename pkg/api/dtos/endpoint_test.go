package dtos

import (
	"testing"

	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest(deploymentType entities.DeploymentType) *DeployEndpointRequest {
	request := &DeployEndpointRequest{
		Name:           "sentiment",
		UserID:         "user-1",
		Framework:      entities.FrameworkSklearn,
		DeploymentType: deploymentType,
		APIKey:         "ep-key",
	}
	switch deploymentType {
	case entities.DeploymentTypeSingleFile:
		request.ModelFileKey = "user-1/sentiment/model.pkl"
	case entities.DeploymentTypeZipArchive:
		request.ArchiveKey = "user-1/sentiment/package.zip"
	case entities.DeploymentTypeGitRepository:
		request.RepoURL = "https://github.com/acme/sentiment-model"
	}
	return request
}

func TestValidateAcceptsEachDeploymentType(t *testing.T) {
	for _, deploymentType := range []entities.DeploymentType{
		entities.DeploymentTypeSingleFile,
		entities.DeploymentTypeZipArchive,
		entities.DeploymentTypeGitRepository,
	} {
		assert.NoError(t, validRequest(deploymentType).Validate(), string(deploymentType))
	}
}

func TestValidateRejectsUnknownFramework(t *testing.T) {
	request := validRequest(entities.DeploymentTypeSingleFile)
	request.Framework = entities.Framework("caffe")

	err := request.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "framework")
}

func TestValidateRejectsUnknownDeploymentType(t *testing.T) {
	request := validRequest(entities.DeploymentTypeSingleFile)
	request.DeploymentType = entities.DeploymentType("TARBALL")

	assert.Error(t, request.Validate())
}

func TestValidateRequiresPayloadForDeclaredType(t *testing.T) {
	request := validRequest(entities.DeploymentTypeSingleFile)
	request.ModelFileKey = ""
	assert.ErrorContains(t, request.Validate(), "modelFileKey")

	request = validRequest(entities.DeploymentTypeZipArchive)
	request.ArchiveKey = ""
	assert.ErrorContains(t, request.Validate(), "archiveKey")

	request = validRequest(entities.DeploymentTypeGitRepository)
	request.RepoURL = ""
	assert.ErrorContains(t, request.Validate(), "repoUrl")
}

func TestValidateRejectsMalformedRepositoryURL(t *testing.T) {
	request := validRequest(entities.DeploymentTypeGitRepository)
	request.RepoURL = "git@github.com:acme/sentiment-model.git"

	assert.Error(t, request.Validate())
}

func TestToDeploymentRequestCarriesAllFields(t *testing.T) {
	id := uuid.New()
	request := validRequest(entities.DeploymentTypeGitRepository)
	request.Branch = "main"
	request.Commit = "abc1234"
	request.AccessToken = "ghp_secret"

	deployment := request.ToDeploymentRequest(id)

	assert.Equal(t, id, deployment.EndpointID)
	assert.Equal(t, request.Framework, deployment.Framework)
	assert.Equal(t, request.DeploymentType, deployment.DeploymentType)
	assert.Equal(t, request.RepoURL, deployment.RepoURL)
	assert.Equal(t, "main", deployment.Branch)
	assert.Equal(t, "abc1234", deployment.Commit)
	assert.Equal(t, "ghp_secret", deployment.AccessToken)
}
