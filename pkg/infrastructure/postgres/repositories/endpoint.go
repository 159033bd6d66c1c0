package repositories

import (
	"encoding/json"
	"time"

	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/aiforge-platform/aiforge-backend/pkg/infrastructure/postgres/schemas"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EndpointRepository implements the per-endpoint status-update contract on a
// single postgres record. Status and log writes replace the whole record
// field set in one update, so a concurrent poller may observe an intermediate
// state but never a corrupted one.
type EndpointRepository struct {
	db *gorm.DB
}

func NewEndpointRepository(db *gorm.DB) *EndpointRepository {
	return &EndpointRepository{db: db}
}

func (r *EndpointRepository) Create(endpoint *entities.EndpointEntity) error {
	record := schemas.Endpoint{
		ID:             endpoint.ID,
		Name:           endpoint.Name,
		UserID:         endpoint.UserID,
		ProjectID:      endpoint.ProjectID,
		Framework:      endpoint.Framework,
		DeploymentType: endpoint.DeploymentType,
		Status:         endpoint.Status,
		BuildLogs:      endpoint.BuildLogs,
		APIKey:         endpoint.APIKey,
		Config:         datatypes.JSON(endpoint.Config),
	}
	return r.db.Create(&record).Error
}

// ResetForAttempt rewinds an existing record to the start of a fresh
// deployment attempt. The build log accumulates within one attempt only.
func (r *EndpointRepository) ResetForAttempt(id string, endpoint *entities.EndpointEntity) error {
	return r.db.Model(&schemas.Endpoint{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":            endpoint.Name,
		"framework":       endpoint.Framework,
		"deployment_type": endpoint.DeploymentType,
		"status":          entities.DeploymentStatusInitializing,
		"build_logs":      "",
		"error_message":   "",
		"service_url":     "",
		"deployed_at":     nil,
		"api_key":         endpoint.APIKey,
		"config":          datatypes.JSON(endpoint.Config),
	}).Error
}

func (r *EndpointRepository) GetByID(id string) (*entities.EndpointEntity, error) {
	var record schemas.Endpoint
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return toEntity(&record), nil
}

func (r *EndpointRepository) GetAll() ([]*entities.EndpointEntity, error) {
	var records []schemas.Endpoint
	if err := r.db.Order("created_at desc").Find(&records).Error; err != nil {
		return nil, err
	}
	endpoints := make([]*entities.EndpointEntity, 0, len(records))
	for i := range records {
		endpoints = append(endpoints, toEntity(&records[i]))
	}
	return endpoints, nil
}

func (r *EndpointRepository) GetStatus(id string) (entities.DeploymentStatus, error) {
	var record schemas.Endpoint
	if err := r.db.Select("status").Where("id = ?", id).First(&record).Error; err != nil {
		return "", err
	}
	return record.Status, nil
}

func (r *EndpointRepository) ReadBuildLog(id string) (string, error) {
	var record schemas.Endpoint
	if err := r.db.Select("build_logs").Where("id = ?", id).First(&record).Error; err != nil {
		return "", err
	}
	return record.BuildLogs, nil
}

// AppendStatus persists a status transition together with an appended log
// line in a single record update (read-modify-write of the append-only log).
func (r *EndpointRepository) AppendStatus(
	id string,
	status entities.DeploymentStatus,
	logLine string,
	errorMessage string,
) error {
	existing, err := r.ReadBuildLog(id)
	if err != nil {
		return err
	}
	logs := existing
	if logLine != "" {
		if logs != "" {
			logs += "\n"
		}
		logs += logLine
	}
	return r.db.Model(&schemas.Endpoint{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        status,
		"build_logs":    logs,
		"error_message": errorMessage,
	}).Error
}

func (r *EndpointRepository) SetServiceURL(id string, url string, deployedAt time.Time) error {
	return r.db.Model(&schemas.Endpoint{}).Where("id = ?", id).Updates(map[string]interface{}{
		"service_url": url,
		"deployed_at": deployedAt,
	}).Error
}

func toEntity(record *schemas.Endpoint) *entities.EndpointEntity {
	return &entities.EndpointEntity{
		ID:             record.ID,
		Name:           record.Name,
		UserID:         record.UserID,
		ProjectID:      record.ProjectID,
		Framework:      record.Framework,
		DeploymentType: record.DeploymentType,
		Status:         record.Status,
		ErrorMessage:   record.ErrorMessage,
		BuildLogs:      record.BuildLogs,
		ServiceURL:     record.ServiceURL,
		DeployedAt:     record.DeployedAt,
		Config:         json.RawMessage(record.Config),
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}
