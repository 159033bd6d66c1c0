package gitrepo

import (
	"fmt"
	"path/filepath"

	"github.com/aiforge-platform/aiforge-backend/internal/consts"
	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/discovery"
)

// dependencyManifests are the files accepted as a dependency declaration for
// repository deployments. Repos are allowed more freedom than ZIP uploads.
var dependencyManifests = []string{
	consts.RequirementsFile,
	"setup.py",
	"pyproject.toml",
	"setup.cfg",
}

// Validate checks a cloned repository. It is deliberately more permissive
// than ZIP validation: no manifest is required, but the repo must contain at
// least one model artifact and fit within the 1 GiB budget (tighter than the
// ZIP ceiling since .git history is already stripped).
func Validate(clonedPath string) *entities.ValidationReport {
	report := entities.NewValidationReport()

	found, err := discovery.FindArtifacts(clonedPath)
	if err != nil {
		report.AddError(fmt.Sprintf("failed to inspect repository: %s", err))
		return report
	}

	if len(found.ModelFiles) == 0 {
		report.AddError("no model artifact files found in the repository (recognized extensions: .pkl, .pt, .pth, .h5, .onnx, .joblib, ...)")
	}

	hasDependencyDecl := false
	for _, name := range dependencyManifests {
		if discovery.FileExists(filepath.Join(clonedPath, name)) {
			hasDependencyDecl = true
			break
		}
	}
	if !hasDependencyDecl {
		report.AddWarning("no dependency declaration found (requirements.txt, setup.py or pyproject.toml); only base runtime dependencies will be installed")
	}

	if !discovery.FileExists(filepath.Join(clonedPath, consts.ReadmeFile)) && !discovery.FileExists(filepath.Join(clonedPath, "README")) {
		report.AddWarning("repository has no README")
	}

	total, err := discovery.TotalSize(clonedPath)
	if err == nil && total > consts.MaxRepositorySize {
		report.AddError(fmt.Sprintf("repository is %d bytes, exceeding the 1 GiB limit", total))
	}

	return report
}
