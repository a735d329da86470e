package repository

import (
	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
)

// CatalogRepository reads and edits event plans and add-ons.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListActivePlans() ([]models.EventPlan, error) {
	var plans []models.EventPlan
	err := r.db.Where("is_active = ?", true).Order("sort_order ASC").Order("id ASC").Find(&plans).Error
	return plans, err
}

func (r *CatalogRepository) ListActiveAddons() ([]models.AddonCatalog, error) {
	var addons []models.AddonCatalog
	err := r.db.Where("is_active = ?", true).Order("sort_order ASC").Order("id ASC").Find(&addons).Error
	return addons, err
}

func (r *CatalogRepository) GetPlan(id uint) (*models.EventPlan, error) {
	var plan models.EventPlan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *CatalogRepository) GetAddon(id uint) (*models.AddonCatalog, error) {
	var addon models.AddonCatalog
	if err := r.db.First(&addon, id).Error; err != nil {
		return nil, err
	}
	return &addon, nil
}

func (r *CatalogRepository) SavePlan(plan *models.EventPlan) error {
	return r.db.Save(plan).Error
}

func (r *CatalogRepository) SaveAddon(addon *models.AddonCatalog) error {
	return r.db.Save(addon).Error
}
