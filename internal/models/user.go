package models

import (
	"time"
)

type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	FullName            string     `json:"full_name" gorm:"not null"`
	Email               string     `json:"email" gorm:"unique;not null"`
	Password            string     `json:"-" gorm:"not null"`
	IsVerified          bool       `json:"is_verified" gorm:"default:false"`
	IsAdmin             bool       `json:"is_admin" gorm:"default:false"`
	SessionVersion      int        `json:"-" gorm:"not null;default:1"`
	DeletionRequestedAt *time.Time `json:"deletion_requested_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// PendingDeletion hesap silme talebi var mı
func (u *User) PendingDeletion() bool {
	return u.DeletionRequestedAt != nil
}

type ProfileResponse struct {
	User       User          `json:"user"`
	ActivePlan *PlanSummary  `json:"active_plan,omitempty"`
	Features   *PlanFeatures `json:"features,omitempty"`
}
