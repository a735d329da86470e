package repository

import (
	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
)

type ThemeRepository struct {
	db *gorm.DB
}

func NewThemeRepository(db *gorm.DB) *ThemeRepository {
	return &ThemeRepository{db: db}
}

func (r *ThemeRepository) ListActive() ([]models.Theme, error) {
	var themes []models.Theme
	err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&themes).Error
	return themes, err
}

func (r *ThemeRepository) GetByID(id uint) (*models.Theme, error) {
	var theme models.Theme
	if err := r.db.First(&theme, id).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *ThemeRepository) GetBySlug(slug string) (*models.Theme, error) {
	var theme models.Theme
	if err := r.db.Where("slug = ?", slug).First(&theme).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *ThemeRepository) Save(theme *models.Theme) error {
	return r.db.Save(theme).Error
}
