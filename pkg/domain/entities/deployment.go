package entities

import (
	"github.com/google/uuid"
)

// DeploymentRequest is the immutable input for one deployment attempt. It is
// created once per attempt and owned by the orchestrator for its lifetime.
type DeploymentRequest struct {
	EndpointID     uuid.UUID
	UserID         string
	ProjectID      string
	Framework      Framework
	DeploymentType DeploymentType
	APIKey         string

	// SINGLE_FILE payload: object storage keys
	ModelFileKey        string
	RequirementsFileKey string
	InferenceFileKey    string

	// ZIP_ARCHIVE payload
	ArchiveKey string

	// GIT_REPOSITORY payload
	RepoURL     string
	Branch      string
	Commit      string
	AccessToken string
}

// ExtractionResult is produced by archive extraction: a normalized package
// directory plus the artifact paths discovered inside it. ModelFiles are
// relative to ExtractedPath; the remaining paths are absolute.
type ExtractionResult struct {
	Success          bool
	ExtractedPath    string
	ModelFiles       []string
	RequirementsPath string
	InferencePath    string
	ConfigPath       string
	Error            string
}

// CloneResult is produced by the repository fetcher.
type CloneResult struct {
	Success          bool
	ClonedPath       string
	Branch           string
	CommitSHA        string
	ModelFiles       []string
	RequirementsPath string
	InferencePath    string
	Error            string
}

// ValidationReport holds the outcome of package validation. Errors abort the
// deployment; warnings are forwarded to the build log.
type ValidationReport struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *ValidationReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Valid = false
}

func (r *ValidationReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// NewValidationReport returns a report that is valid until an error is added.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{Valid: true, Errors: []string{}, Warnings: []string{}}
}
