package repository

import (
	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
)

type GalleryOrderRepository struct {
	db *gorm.DB
}

func NewGalleryOrderRepository(db *gorm.DB) *GalleryOrderRepository {
	return &GalleryOrderRepository{db: db}
}

func (r *GalleryOrderRepository) WithTx(tx *gorm.DB) *GalleryOrderRepository {
	return &GalleryOrderRepository{db: tx}
}

// Replace drops the event's order rows and inserts fileIDs with ordinals 1..n.
func (r *GalleryOrderRepository) Replace(eventID uint, fileIDs []uint) error {
	if err := r.db.Where("event_id = ?", eventID).Delete(&models.EventGalleryOrder{}).Error; err != nil {
		return err
	}
	if len(fileIDs) == 0 {
		return nil
	}
	rows := make([]models.EventGalleryOrder, len(fileIDs))
	for i, id := range fileIDs {
		rows[i] = models.EventGalleryOrder{EventID: eventID, FileMetadataID: id, Ordinal: i + 1}
	}
	return r.db.CreateInBatches(rows, 500).Error
}

type OrderedFile struct {
	models.FileMetadata
	Ordinal int
}

func (r *GalleryOrderRepository) ListPage(eventID uint, offset, limit int) ([]OrderedFile, error) {
	var out []OrderedFile
	err := r.db.Table("event_gallery_orders AS o").
		Select("f.*, o.ordinal AS ordinal").
		Joins("JOIN file_metadata AS f ON f.id = o.file_metadata_id").
		Where("o.event_id = ?", eventID).
		Order("o.ordinal ASC").
		Offset(offset).Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *GalleryOrderRepository) Count(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.EventGalleryOrder{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (r *GalleryOrderRepository) Ordinals(eventID uint) ([]models.EventGalleryOrder, error) {
	var rows []models.EventGalleryOrder
	err := r.db.Where("event_id = ?", eventID).Order("ordinal ASC").Find(&rows).Error
	return rows, err
}
