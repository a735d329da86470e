package repository

import (
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) WithTx(tx *gorm.DB) *AuditRepository {
	return &AuditRepository{db: tx}
}

func (r *AuditRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *AuditRepository) ListRecent(limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *AuditRepository) CountByAction(action string) (int64, error) {
	var count int64
	err := r.db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error
	return count, err
}

// ErrorLogRepository reads the app_error_logs table written by the logger.
type ErrorLogRepository struct {
	db *gorm.DB
}

func NewErrorLogRepository(db *gorm.DB) *ErrorLogRepository {
	return &ErrorLogRepository{db: db}
}

func (r *ErrorLogRepository) ListRecent(limit int) ([]models.AppErrorLog, error) {
	var logs []models.AppErrorLog
	err := r.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *ErrorLogRepository) DeleteOlderThan(t time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", t).Delete(&models.AppErrorLog{})
	return res.RowsAffected, res.Error
}
