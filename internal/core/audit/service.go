package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service provides audit logging functionality
type Service struct {
	db *gorm.DB
}

// NewService creates a new audit service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Log creates a new audit log entry
func (s *Service) Log(ctx context.Context, entry *AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// LogChange creates an audit log tracking a change of one entity
func (s *Service) LogChange(ctx context.Context, actor Actor, action, entity, entityID string, oldValue, newValue interface{}) error {
	oldJSON, err := toJSON(oldValue)
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to serialize old value")
	}

	newJSON, err := toJSON(newValue)
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to serialize new value")
	}

	return s.Log(ctx, &AuditLog{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		OldValue:  oldJSON,
		NewValue:  newJSON,
	})
}

// GetEntityHistory retrieves changes for one entity, newest first
func (s *Service) GetEntityHistory(ctx context.Context, entity, entityID string, limit int) ([]AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	var logs []AuditLog
	err := s.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get entity history: %w", err)
	}

	return logs, nil
}

// DeleteOldLogs deletes audit logs older than a certain number of days
func (s *Service) DeleteOldLogs(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep < 1 {
		return 0, fmt.Errorf("daysToKeep must be at least 1")
	}

	cutoffDate := time.Now().AddDate(0, 0, -daysToKeep)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoffDate).Delete(&AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old audit logs: %w", result.Error)
	}

	log.Info().Int64("deleted", result.RowsAffected).Int("days_to_keep", daysToKeep).Msg("🧹 Deleted old audit logs")
	return result.RowsAffected, nil
}

// changeValue is the stored shape of old/new values. Bare scalars are not valid
// datatypes.JSON once SQLite's column affinity turns them into numbers.
type changeValue struct {
	Value interface{} `json:"value"`
}

// toJSON wraps value as {"value": ...}; nil stays NULL
func toJSON(value interface{}) (datatypes.JSON, error) {
	if value == nil {
		return nil, nil
	}

	bytes, err := json.Marshal(changeValue{Value: value})
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(bytes), nil
}
