package repository

import (
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
)

type GuestSessionRepository struct {
	db *gorm.DB
}

func NewGuestSessionRepository(db *gorm.DB) *GuestSessionRepository {
	return &GuestSessionRepository{db: db}
}

func (r *GuestSessionRepository) Create(s *models.GuestSession) error {
	return r.db.Create(s).Error
}

func (r *GuestSessionRepository) GetByToken(token string) (*models.GuestSession, error) {
	var s models.GuestSession
	if err := r.db.Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GuestSessionRepository) Touch(id uint, at time.Time) error {
	return r.db.Model(&models.GuestSession{}).Where("id = ?", id).Update("last_seen_at", at).Error
}

func (r *GuestSessionRepository) CountByEvent(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.GuestSession{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}
