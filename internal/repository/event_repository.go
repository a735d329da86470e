package repository

import (
	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

// LockRow takes SELECT ... FOR UPDATE on the event row, soft-deleted rows
// included, until the surrounding transaction ends. A missing row locks nothing.
func (r *EventRepository) LockRow(id uint) error {
	var ids []uint
	return r.db.Unscoped().Model(&models.Event{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Pluck("id", &ids).Error
}

func (r *EventRepository) Create(event *models.Event) (*models.Event, error) {
	if err := r.db.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.Preload("Theme").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) GetByCode(code string) (*models.Event, error) {
	var event models.Event
	if err := r.db.Preload("Theme").Where("code = ?", code).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) CodeExists(code string) (bool, error) {
	var count int64
	// silinmiş etkinliklerin kodları da tekrar kullanılmaz
	err := r.db.Unscoped().Model(&models.Event{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *EventRepository) GetUserEvents(userID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("Theme").Where("user_id = ?", userID).Order("starts_at DESC").Find(&events).Error
	return events, err
}

func (r *EventRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *EventRepository) Update(event *models.Event) error {
	return r.db.Omit("Theme").Save(event).Error
}

func (r *EventRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Event{}).Where("id = ?", id).Updates(fields).Error
}

// Delete soft-deletes the event and drops its gallery order.
func (r *EventRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventGalleryOrder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, id).Error
	})
}
