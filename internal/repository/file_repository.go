package repository

import (
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) WithTx(tx *gorm.DB) *FileRepository {
	return &FileRepository{db: tx}
}

func (r *FileRepository) Create(file *models.FileMetadata) error {
	return r.db.Create(file).Error
}

func (r *FileRepository) GetByID(id uint) (*models.FileMetadata, error) {
	var file models.FileMetadata
	if err := r.db.First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) GetByIDs(eventID uint, ids []uint) ([]models.FileMetadata, error) {
	var files []models.FileMetadata
	err := r.db.Where("event_id = ? AND id IN ?", eventID, ids).Find(&files).Error
	return files, err
}

// ChecksumExists looks at every file of the event, trashed ones included.
func (r *FileRepository) ChecksumExists(eventID uint, checksum string) (bool, error) {
	var count int64
	err := r.db.Model(&models.FileMetadata{}).
		Where("event_id = ? AND checksum = ?", eventID, checksum).
		Count(&count).Error
	return count > 0, err
}

// ListForOrdering returns the live files of an event in display order:
// capture time ascending with unknown capture times last, then upload time, then id.
func (r *FileRepository) ListForOrdering(eventID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.FileMetadata{}).
		Where("event_id = ? AND is_deleted = ?", eventID, false).
		Order("CASE WHEN captured_at IS NULL THEN 1 ELSE 0 END").
		Order("captured_at ASC").
		Order("uploaded_at ASC").
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *FileRepository) ListTrash(eventID uint, since time.Time) ([]models.FileMetadata, error) {
	var files []models.FileMetadata
	err := r.db.Where("event_id = ? AND is_deleted = ? AND deleted_at >= ?", eventID, true, since).
		Order("deleted_at DESC").
		Find(&files).Error
	return files, err
}

func (r *FileRepository) MarkDeleted(eventID uint, ids []uint, at time.Time) (int64, error) {
	res := r.db.Model(&models.FileMetadata{}).
		Where("event_id = ? AND id IN ? AND is_deleted = ?", eventID, ids, false).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": at})
	return res.RowsAffected, res.Error
}

func (r *FileRepository) Restore(eventID uint, ids []uint) (int64, error) {
	res := r.db.Model(&models.FileMetadata{}).
		Where("event_id = ? AND id IN ? AND is_deleted = ?", eventID, ids, true).
		Updates(map[string]interface{}{"is_deleted": false, "deleted_at": nil})
	return res.RowsAffected, res.Error
}

func (r *FileRepository) SetThumbnail(id uint, key string, status models.ThumbnailStatus) error {
	return r.db.Model(&models.FileMetadata{}).Where("id = ?", id).
		Updates(map[string]interface{}{"thumbnail_key": key, "thumbnail_status": status}).Error
}
