package entities

// Task is a unit of background work executed by the task manager.
type Task func()

// DeploymentType determines which extraction path the orchestrator takes.
type DeploymentType string

const (
	DeploymentTypeSingleFile    DeploymentType = "SINGLE_FILE"
	DeploymentTypeZipArchive    DeploymentType = "ZIP_ARCHIVE"
	DeploymentTypeGitRepository DeploymentType = "GIT_REPOSITORY"
)

func (t DeploymentType) Valid() bool {
	switch t {
	case DeploymentTypeSingleFile, DeploymentTypeZipArchive, DeploymentTypeGitRepository:
		return true
	}
	return false
}

// DeploymentStatus is the endpoint's deployment state machine:
// INITIALIZING -> BUILDING -> DEPLOYING -> DEPLOYED | FAILED.
// FAILED is reachable from any state; DEPLOYED and FAILED are terminal.
type DeploymentStatus string

const (
	DeploymentStatusInitializing DeploymentStatus = "INITIALIZING"
	DeploymentStatusBuilding     DeploymentStatus = "BUILDING"
	DeploymentStatusDeploying    DeploymentStatus = "DEPLOYING"
	DeploymentStatusDeployed     DeploymentStatus = "DEPLOYED"
	DeploymentStatusFailed       DeploymentStatus = "FAILED"
)

func (s DeploymentStatus) Terminal() bool {
	return s == DeploymentStatusDeployed || s == DeploymentStatusFailed
}

// Framework is the closed set of supported ML frameworks.
type Framework string

const (
	FrameworkSklearn    Framework = "sklearn"
	FrameworkPytorch    Framework = "pytorch"
	FrameworkTensorflow Framework = "tensorflow"
	FrameworkOnnx       Framework = "onnx"
	FrameworkCustom     Framework = "custom"
)

// Frameworks lists every supported framework.
var Frameworks = []Framework{
	FrameworkSklearn,
	FrameworkPytorch,
	FrameworkTensorflow,
	FrameworkOnnx,
	FrameworkCustom,
}

func (f Framework) Valid() bool {
	for _, known := range Frameworks {
		if f == known {
			return true
		}
	}
	return false
}
