package repository

import (
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseRepository covers plan purchases and per-event add-on purchases.
type PurchaseRepository struct {
	db   *gorm.DB
	lock bool
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) WithTx(tx *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: tx}
}

// Locked returns a copy whose payment-reference lookups hold
// SELECT ... FOR UPDATE until the surrounding transaction ends.
func (r *PurchaseRepository) Locked() *PurchaseRepository {
	return &PurchaseRepository{db: r.db, lock: true}
}

func (r *PurchaseRepository) lookup() *gorm.DB {
	if r.lock {
		return r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.db
}

func (r *PurchaseRepository) Create(p *models.Purchase) error {
	return r.db.Create(p).Error
}

func (r *PurchaseRepository) CreateAddon(p *models.EventAddonPurchase) error {
	return r.db.Create(p).Error
}

// SaveTransition writes p only while the stored status is still from.
// false means another writer moved the row first and nothing was written.
func (r *PurchaseRepository) SaveTransition(p *models.Purchase, from models.PurchaseStatus) (bool, error) {
	res := r.db.Model(p).Select("*").Omit("Plan", "ID", "CreatedAt").
		Where("status = ?", from).Updates(p)
	return res.RowsAffected == 1, res.Error
}

func (r *PurchaseRepository) SaveAddonTransition(p *models.EventAddonPurchase, from models.PurchaseStatus) (bool, error) {
	res := r.db.Model(p).Select("*").Omit("Addon", "ID", "CreatedAt").
		Where("status = ?", from).Updates(p)
	return res.RowsAffected == 1, res.Error
}

func (r *PurchaseRepository) GetBySessionID(sessionID string) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.lookup().Preload("Plan").Where("stripe_session_id = ?", sessionID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) GetAddonBySessionID(sessionID string) (*models.EventAddonPurchase, error) {
	var p models.EventAddonPurchase
	if err := r.lookup().Preload("Addon").Where("stripe_session_id = ?", sessionID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) GetByPaymentIntent(intentID string) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.lookup().Preload("Plan").Where("stripe_payment_intent_id = ?", intentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) GetAddonByPaymentIntent(intentID string) (*models.EventAddonPurchase, error) {
	var p models.EventAddonPurchase
	if err := r.lookup().Preload("Addon").Where("stripe_payment_intent_id = ?", intentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// LatestPaid returns the most recent paid plan purchase (by paid_at, then id).
func (r *PurchaseRepository) LatestPaid(userID uint) (*models.Purchase, error) {
	var p models.Purchase
	err := r.db.Preload("Plan").
		Where("user_id = ? AND status = ?", userID, models.PurchaseStatusPaid).
		Order("paid_at DESC").Order("id DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) PendingForUser(userID uint) ([]models.Purchase, error) {
	var out []models.Purchase
	err := r.db.Where("user_id = ? AND status = ?", userID, models.PurchaseStatusPending).Find(&out).Error
	return out, err
}

func (r *PurchaseRepository) PendingAddonsForUser(userID uint) ([]models.EventAddonPurchase, error) {
	var out []models.EventAddonPurchase
	err := r.db.Where("user_id = ? AND status = ?", userID, models.PurchaseStatusPending).Find(&out).Error
	return out, err
}

func (r *PurchaseRepository) PendingUsersBefore(t time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Raw(`
		SELECT user_id FROM purchases WHERE status = ? AND created_at < ?
		UNION
		SELECT user_id FROM event_addon_purchases WHERE status = ? AND created_at < ?`,
		models.PurchaseStatusPending, t, models.PurchaseStatusPending, t,
	).Scan(&ids).Error
	return ids, err
}

func (r *PurchaseRepository) ListByUser(userID uint) ([]models.Purchase, error) {
	var out []models.Purchase
	err := r.db.Preload("Plan").Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *PurchaseRepository) ListAddonsByUser(userID uint) ([]models.EventAddonPurchase, error) {
	var out []models.EventAddonPurchase
	err := r.db.Preload("Addon").Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *PurchaseRepository) PaidAddonsForEvent(eventID uint) ([]models.EventAddonPurchase, error) {
	var out []models.EventAddonPurchase
	err := r.db.Preload("Addon").
		Where("event_id = ? AND status = ?", eventID, models.PurchaseStatusPaid).
		Find(&out).Error
	return out, err
}
