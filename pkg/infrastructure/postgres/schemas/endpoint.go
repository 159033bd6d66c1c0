package schemas

import (
	"time"

	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Endpoint struct {
	ID             uuid.UUID                 `gorm:"type:uuid;primaryKey;column:id"`
	Name           string                    `gorm:"column:name;not null"`
	UserID         string                    `gorm:"column:user_id;not null;index"`
	ProjectID      string                    `gorm:"column:project_id;index"`
	Framework      entities.Framework        `gorm:"column:framework;not null"`
	DeploymentType entities.DeploymentType   `gorm:"column:deployment_type;not null"`
	Status         entities.DeploymentStatus `gorm:"column:status;not null"`
	ErrorMessage   string                    `gorm:"column:error_message"`
	BuildLogs      string                    `gorm:"type:text;column:build_logs"`
	ServiceURL     string                    `gorm:"column:service_url"`
	DeployedAt     *time.Time                `gorm:"column:deployed_at"`
	APIKey         string                    `gorm:"column:api_key"`
	Config         datatypes.JSON            `gorm:"type:jsonb;column:config"`
	CreatedAt      time.Time                 `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt      time.Time                 `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt      gorm.DeletedAt            `gorm:"index;column:deleted_at"`
}

func (Endpoint) TableName() string {
	return "endpoints"
}
