package repository

import (
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) WithTx(tx *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: tx}
}

// Claim inserts the event row if it is new and returns it locked for update.
func (r *WebhookEventRepository) Claim(evt *models.WebhookEvent) (*models.WebhookEvent, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(evt).Error
	if err != nil {
		return nil, err
	}

	var row models.WebhookEvent
	err = r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("provider = ? AND provider_event_id = ?", evt.Provider, evt.ProviderEventID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *WebhookEventRepository) MarkProcessed(id uint, at time.Time) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{"processed_at": at, "processing_error": ""}).Error
}

func (r *WebhookEventRepository) MarkFailed(id uint, msg string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Update("processing_error", msg).Error
}

func (r *WebhookEventRepository) CountByProviderEvent(provider, eventID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.WebhookEvent{}).
		Where("provider = ? AND provider_event_id = ?", provider, eventID).
		Count(&count).Error
	return count, err
}
