package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EndpointEntity is the per-endpoint record the status store holds. One record
// per endpoint; the build log is append-only across a deployment attempt.
type EndpointEntity struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	UserID         string           `json:"user_id"`
	ProjectID      string           `json:"project_id"`
	Framework      Framework        `json:"framework"`
	DeploymentType DeploymentType   `json:"deployment_type"`
	Status         DeploymentStatus `json:"status"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	BuildLogs      string           `json:"build_logs,omitempty"`
	ServiceURL     string           `json:"service_url,omitempty"`
	DeployedAt     *time.Time       `json:"deployed_at,omitempty"`
	APIKey         string           `json:"-"`
	Config         json.RawMessage  `json:"config,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
