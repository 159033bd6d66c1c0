package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aiforge-platform/aiforge-backend/internal/config"
	"github.com/aiforge-platform/aiforge-backend/internal/consts"
	"github.com/aiforge-platform/aiforge-backend/internal/logger"
	"github.com/aiforge-platform/aiforge-backend/internal/utils"
	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/archive"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/buildspec"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/gitrepo"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/modelconfig"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/requirements"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EndpointRepository is the status store: one record per endpoint, an
// append-only build log, and a URL that must be persisted before the
// DEPLOYED transition.
type EndpointRepository interface {
	Create(endpoint *entities.EndpointEntity) error
	ResetForAttempt(id string, endpoint *entities.EndpointEntity) error
	GetByID(id string) (*entities.EndpointEntity, error)
	GetAll() ([]*entities.EndpointEntity, error)
	GetStatus(id string) (entities.DeploymentStatus, error)
	ReadBuildLog(id string) (string, error)
	AppendStatus(id string, status entities.DeploymentStatus, logLine string, errorMessage string) error
	SetServiceURL(id string, url string, deployedAt time.Time) error
}

// ObjectStorage downloads uploaded model artifacts by key.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, object, destPath string) error
}

// ImageBuilder builds and pushes the endpoint container image.
type ImageBuilder interface {
	ConfigureAuth(ctx context.Context, imageTag string) error
	Build(ctx context.Context, workDir, imageTag string) error
	Push(ctx context.Context, imageTag string) error
}

// ComputePlatform deploys an image and resolves the assigned public URL.
type ComputePlatform interface {
	Deploy(ctx context.Context, serviceName, imageTag string, envVars map[string]string) error
	ServiceURL(ctx context.Context, serviceName string) (string, error)
}

type TaskManager interface {
	Start()
	AddTask(task entities.Task)
	Stop()
}

// DeploymentService orchestrates the whole deployment pipeline: dispatching
// on deployment type, normalizing the package, merging requirements,
// synthesizing build files and driving build -> push -> deploy against the
// external tooling, persisting status at every boundary.
type DeploymentService struct {
	env          *config.Environment
	endpointRepo EndpointRepository
	storage      ObjectStorage
	builder      ImageBuilder
	platform     ComputePlatform
	taskManager  TaskManager

	// in-flight set implements the single-flight-per-endpoint policy: two
	// concurrent attempts for the same endpoint would share a working
	// directory and status record, so the second is rejected outright.
	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewDeploymentService(
	env *config.Environment,
	endpointRepo EndpointRepository,
	storage ObjectStorage,
	builder ImageBuilder,
	platform ComputePlatform,
	taskManager TaskManager,
) *DeploymentService {
	s := &DeploymentService{
		env:          env,
		endpointRepo: endpointRepo,
		storage:      storage,
		builder:      builder,
		platform:     platform,
		taskManager:  taskManager,
		inFlight:     map[uuid.UUID]struct{}{},
	}
	s.taskManager.Start()
	return s
}

// Deploy records the endpoint and enqueues the deployment attempt. It returns
// an error without side effects when a deployment for the same endpoint is
// already running.
func (s *DeploymentService) Deploy(
	ctx context.Context,
	endpoint *entities.EndpointEntity,
	request *entities.DeploymentRequest,
) error {
	if !s.tryAcquire(request.EndpointID) {
		return fmt.Errorf("a deployment for endpoint %s is already in progress", request.EndpointID)
	}

	if err := s.createOrReset(endpoint); err != nil {
		s.release(request.EndpointID)
		logger.Error("failed to record endpoint", zap.String("endpointId", request.EndpointID.String()), zap.Error(err))
		return fmt.Errorf("failed to record endpoint: %w", err)
	}

	logger.Info("Deployment queued",
		zap.String("endpointId", request.EndpointID.String()),
		zap.String("type", string(request.DeploymentType)))

	s.taskManager.AddTask(func() {
		defer s.release(request.EndpointID)
		s.handleDeployment(ctx, request)
	})

	return nil
}

func (s *DeploymentService) GetAllEndpoints() ([]*entities.EndpointEntity, error) {
	return s.endpointRepo.GetAll()
}

func (s *DeploymentService) GetEndpointByID(id uuid.UUID) (*entities.EndpointEntity, error) {
	return s.endpointRepo.GetByID(id.String())
}

func (s *DeploymentService) GetBuildLog(id uuid.UUID) (string, error) {
	return s.endpointRepo.ReadBuildLog(id.String())
}

func (s *DeploymentService) createOrReset(endpoint *entities.EndpointEntity) error {
	if _, err := s.endpointRepo.GetByID(endpoint.ID.String()); err != nil {
		endpoint.Status = entities.DeploymentStatusInitializing
		return s.endpointRepo.Create(endpoint)
	}
	return s.endpointRepo.ResetForAttempt(endpoint.ID.String(), endpoint)
}

func (s *DeploymentService) tryAcquire(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *DeploymentService) release(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// handleDeployment runs one attempt to completion and guarantees a FAILED
// status write when the pipeline errors, so no record is left stuck in
// BUILDING or DEPLOYING after the task exits.
func (s *DeploymentService) handleDeployment(ctx context.Context, request *entities.DeploymentRequest) {
	endpointID := request.EndpointID.String()

	if err := s.deployEndpoint(ctx, request); err != nil {
		logger.Error("deployment failed",
			zap.String("endpointId", endpointID),
			zap.Error(err))
		updateErr := s.endpointRepo.AppendStatus(
			endpointID,
			entities.DeploymentStatusFailed,
			logLine("Deployment failed: "+err.Error()),
			err.Error(),
		)
		if updateErr != nil {
			logger.Error("failed to record deployment failure",
				zap.String("endpointId", endpointID),
				zap.Error(updateErr))
		}
		return
	}

	logger.Info("Endpoint deployed successfully", zap.String("endpointId", endpointID))
}

func (s *DeploymentService) deployEndpoint(ctx context.Context, request *entities.DeploymentRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deployment panicked: %v", r)
		}
	}()

	endpointID := request.EndpointID.String()

	if err := s.transition(endpointID, entities.DeploymentStatusBuilding,
		fmt.Sprintf("Starting deployment (type=%s, framework=%s)", request.DeploymentType, request.Framework)); err != nil {
		return err
	}

	workDir := filepath.Join(s.env.WorkspaceRoot, endpointID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	// Disk is shared across concurrent deployments: the workspace goes away
	// on every exit path, success or failure.
	defer func() {
		if cleanupErr := os.RemoveAll(workDir); cleanupErr != nil {
			logger.Warn("failed to remove working directory",
				zap.String("workDir", workDir),
				zap.Error(cleanupErr))
		}
	}()

	packagePath, userRequirements, err := s.preparePackage(ctx, request, workDir)
	if err != nil {
		return err
	}

	merged := requirements.Merge(request.Framework, userRequirements)
	if err := os.WriteFile(filepath.Join(workDir, consts.RequirementsFile), []byte(merged), 0o644); err != nil {
		return fmt.Errorf("failed to write merged requirements: %w", err)
	}

	if err := utils.CopyDir(s.env.ServingAppDir, filepath.Join(workDir, "app")); err != nil {
		return fmt.Errorf("failed to copy serving application source: %w", err)
	}

	dockerfile, dockerignore, err := buildspec.GenerateBuildFiles(request.Framework, request.DeploymentType)
	if err != nil {
		return fmt.Errorf("failed to generate build files: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "Dockerfile"), []byte(dockerfile), 0o644); err != nil {
		return fmt.Errorf("failed to write Dockerfile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, ".dockerignore"), []byte(dockerignore), 0o644); err != nil {
		return fmt.Errorf("failed to write .dockerignore: %w", err)
	}

	canonical := filepath.Join(workDir, consts.ModelPackageDir)
	if packagePath != canonical {
		if err := utils.CopyDir(packagePath, canonical); err != nil {
			return fmt.Errorf("failed to copy model package into build context: %w", err)
		}
	}
	if utils.DirIsEmpty(canonical) {
		return fmt.Errorf("model package directory is empty after assembly; refusing to build an image without model files")
	}

	imageTag := fmt.Sprintf("%s/endpoint-%s:latest", s.env.ArtifactRegistryRepo, endpointID)

	if err := s.builder.ConfigureAuth(ctx, imageTag); err != nil {
		return fmt.Errorf("registry authentication failed: %w", err)
	}

	if err := s.transition(endpointID, entities.DeploymentStatusBuilding, "Building container image "+imageTag); err != nil {
		return err
	}
	if err := s.builder.Build(ctx, workDir, imageTag); err != nil {
		return fmt.Errorf("container build failed: %w", err)
	}

	if err := s.transition(endpointID, entities.DeploymentStatusBuilding, "Pushing image to registry"); err != nil {
		return err
	}
	if err := s.builder.Push(ctx, imageTag); err != nil {
		return fmt.Errorf("image push failed: %w", err)
	}

	if err := s.transition(endpointID, entities.DeploymentStatusDeploying, "Deploying service"); err != nil {
		return err
	}
	serviceName := "endpoint-" + endpointID
	envVars := map[string]string{
		"API_KEY":                   request.APIKey,
		"GCS_BUCKET_MODELS":         s.env.GCSBucketModels,
		"DOWNLOAD_MODEL_ON_STARTUP": "false",
	}
	if err := s.platform.Deploy(ctx, serviceName, imageTag, envVars); err != nil {
		return fmt.Errorf("service deployment failed: %w", err)
	}

	serviceURL, err := s.platform.ServiceURL(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to describe deployed service: %w", err)
	}
	if serviceURL == "" {
		return fmt.Errorf("could not retrieve service URL for %s", serviceName)
	}

	// URL first, terminal status second: a poller must never observe
	// DEPLOYED with an unset serviceUrl.
	if err := s.endpointRepo.SetServiceURL(endpointID, serviceURL, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to persist service URL: %w", err)
	}
	if err := s.transition(endpointID, entities.DeploymentStatusDeployed, "Deployment complete: "+serviceURL); err != nil {
		return err
	}

	return nil
}

// preparePackage dispatches on deployment type and returns the normalized
// package directory plus any raw user requirements text.
func (s *DeploymentService) preparePackage(
	ctx context.Context,
	request *entities.DeploymentRequest,
	workDir string,
) (string, string, error) {
	switch request.DeploymentType {
	case entities.DeploymentTypeSingleFile:
		return s.prepareSingleFile(ctx, request, workDir)
	case entities.DeploymentTypeZipArchive:
		return s.prepareZipArchive(ctx, request, workDir)
	case entities.DeploymentTypeGitRepository:
		return s.prepareGitRepository(ctx, request, workDir)
	default:
		return "", "", fmt.Errorf("unsupported deployment type %q", request.DeploymentType)
	}
}

func (s *DeploymentService) prepareSingleFile(
	ctx context.Context,
	request *entities.DeploymentRequest,
	workDir string,
) (string, string, error) {
	if request.ModelFileKey == "" {
		return "", "", fmt.Errorf("single-file deployments require a model file key")
	}

	packagePath := filepath.Join(workDir, consts.ModelPackageDir)

	modelDest := filepath.Join(packagePath, filepath.Base(request.ModelFileKey))
	if err := s.storage.Download(ctx, s.env.GCSBucketModels, request.ModelFileKey, modelDest); err != nil {
		return "", "", fmt.Errorf("failed to download model file: %w", err)
	}

	userRequirements := ""
	if request.RequirementsFileKey != "" {
		reqDest := filepath.Join(packagePath, consts.RequirementsFile)
		if err := s.storage.Download(ctx, s.env.GCSBucketModels, request.RequirementsFileKey, reqDest); err != nil {
			return "", "", fmt.Errorf("failed to download requirements file: %w", err)
		}
		userRequirements = readFileIfPresent(reqDest)
	}

	if request.InferenceFileKey != "" {
		infDest := filepath.Join(packagePath, filepath.Base(request.InferenceFileKey))
		if err := s.storage.Download(ctx, s.env.GCSBucketModels, request.InferenceFileKey, infDest); err != nil {
			return "", "", fmt.Errorf("failed to download inference file: %w", err)
		}
	}

	return packagePath, userRequirements, nil
}

func (s *DeploymentService) prepareZipArchive(
	ctx context.Context,
	request *entities.DeploymentRequest,
	workDir string,
) (string, string, error) {
	if request.ArchiveKey == "" {
		return "", "", fmt.Errorf("archive deployments require an archive key")
	}

	endpointID := request.EndpointID.String()
	archivePath := filepath.Join(workDir, "upload.zip")
	if err := s.storage.Download(ctx, s.env.GCSBucketModels, request.ArchiveKey, archivePath); err != nil {
		return "", "", fmt.Errorf("failed to download archive: %w", err)
	}

	result := archive.Extract(archivePath, workDir)
	if !result.Success {
		return "", "", fmt.Errorf("archive extraction failed: %s", result.Error)
	}
	// The raw archive has no place in the build context.
	_ = os.Remove(archivePath)

	report := modelconfig.Validate(result.ExtractedPath)
	s.forwardWarnings(endpointID, report)
	if !report.Valid {
		return "", "", fmt.Errorf("package validation failed: %s", strings.Join(report.Errors, "; "))
	}

	return result.ExtractedPath, readFileIfPresent(result.RequirementsPath), nil
}

func (s *DeploymentService) prepareGitRepository(
	ctx context.Context,
	request *entities.DeploymentRequest,
	workDir string,
) (string, string, error) {
	if request.RepoURL == "" {
		return "", "", fmt.Errorf("repository deployments require a repository URL")
	}
	if _, err := gitrepo.ValidateURL(request.RepoURL); err != nil {
		return "", "", fmt.Errorf("invalid repository URL: %w", err)
	}

	endpointID := request.EndpointID.String()
	cloneDir := filepath.Join(workDir, consts.ModelPackageDir)

	cloneCtx, cancel := context.WithTimeout(ctx, time.Duration(s.env.CloneTimeoutSec)*time.Second)
	defer cancel()

	result := gitrepo.Clone(cloneCtx, gitrepo.CloneOptions{
		URL:         request.RepoURL,
		Branch:      request.Branch,
		Commit:      request.Commit,
		AccessToken: request.AccessToken,
	}, cloneDir)
	if !result.Success {
		return "", "", fmt.Errorf("repository clone failed: %s", result.Error)
	}

	if err := s.transition(endpointID, entities.DeploymentStatusBuilding,
		fmt.Sprintf("Cloned %s at %s (branch %s)", request.RepoURL, result.CommitSHA, result.Branch)); err != nil {
		return "", "", err
	}

	report := gitrepo.Validate(result.ClonedPath)
	s.forwardWarnings(endpointID, report)
	if !report.Valid {
		return "", "", fmt.Errorf("repository validation failed: %s", strings.Join(report.Errors, "; "))
	}

	return result.ClonedPath, readFileIfPresent(result.RequirementsPath), nil
}

// transition appends a timestamped log line and persists the new state in one
// status-store write.
func (s *DeploymentService) transition(endpointID string, status entities.DeploymentStatus, message string) error {
	logger.Info("Deployment status",
		zap.String("endpointId", endpointID),
		zap.String("status", string(status)),
		zap.String("message", message))
	if err := s.endpointRepo.AppendStatus(endpointID, status, logLine(message), ""); err != nil {
		return fmt.Errorf("failed to persist status %s: %w", status, err)
	}
	return nil
}

func (s *DeploymentService) forwardWarnings(endpointID string, report *entities.ValidationReport) {
	for _, warning := range report.Warnings {
		if err := s.endpointRepo.AppendStatus(endpointID, entities.DeploymentStatusBuilding, logLine("Warning: "+warning), ""); err != nil {
			logger.Warn("failed to append validation warning", zap.String("endpointId", endpointID), zap.Error(err))
		}
	}
}

func logLine(message string) string {
	return fmt.Sprintf("[%s] %s", time.Now().UTC().Format(time.RFC3339), message)
}

func readFileIfPresent(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
