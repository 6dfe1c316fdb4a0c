package repositories

import (
	"errors"
	"fmt"
	"time"

	"bank-dashboard/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepositoryInterface {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(log *models.AuditLog) error {
	if log == nil {
		return errors.New("audit log cannot be nil")
	}

	if err := r.db.Create(log).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// DeleteOlderThan removes audit rows created more than duration ago.
func (r *AuditLogRepository) DeleteOlderThan(duration time.Duration) (int64, error) {
	result := r.db.Where("created_at < ?", time.Now().Add(-duration)).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old audit logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
