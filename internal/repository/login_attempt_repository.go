package repository

import (
	"errors"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoginAttemptRepository struct {
	db *gorm.DB
}

func NewLoginAttemptRepository(db *gorm.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// Update runs fn on the row for key inside a transaction, holding a
// SELECT ... FOR UPDATE lock. A missing row is first inserted with
// ON CONFLICT DO NOTHING and then locked, so two first failures for one key
// both land on the same row. fn returns false to delete the row.
func (r *LoginAttemptRepository) Update(key string, fn func(a *models.LoginAttempt) (keep bool)) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		a, err := lockAttempt(tx, key)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seed := models.LoginAttempt{Key: key}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
				return err
			}
			a, err = lockAttempt(tx, key)
		}
		if err != nil {
			return err
		}

		if !fn(a) {
			return tx.Delete(&models.LoginAttempt{}, "attempt_key = ?", key).Error
		}
		return tx.Save(a).Error
	})
}

func lockAttempt(tx *gorm.DB, key string) (*models.LoginAttempt, error) {
	var a models.LoginAttempt
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("attempt_key = ?", key).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *LoginAttemptRepository) Get(key string) (*models.LoginAttempt, error) {
	var a models.LoginAttempt
	if err := r.db.Where("attempt_key = ?", key).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteStale removes rows whose window and lock are both over.
func (r *LoginAttemptRepository) DeleteStale(now time.Time, window time.Duration) (int64, error) {
	res := r.db.Where("window_start < ? AND (locked_until IS NULL OR locked_until < ?)", now.Add(-window), now).
		Delete(&models.LoginAttempt{})
	return res.RowsAffected, res.Error
}
