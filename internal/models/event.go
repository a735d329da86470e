package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	UserID            uint           `json:"user_id" gorm:"not null;index"`
	Title             string         `json:"title" gorm:"not null"`
	Description       string         `json:"description"`
	Location          string         `json:"location"` // Etkinlik lokasyonu
	Code              string         `json:"code" gorm:"uniqueIndex;size:16;not null"`
	PasswordHash      string         `json:"-" gorm:"type:varchar(255)"`
	Published         bool           `json:"published" gorm:"default:false"`
	IsDateLocked      bool           `json:"is_date_locked" gorm:"default:false"`
	AllowGuestUploads bool           `json:"allow_guest_uploads" gorm:"not null"`
	StartsAt          time.Time      `json:"starts_at"`
	EndsAt            time.Time      `json:"ends_at"`
	ThemeID           *uint          `json:"theme_id,omitempty"`
	Theme             *Theme         `json:"theme,omitempty" gorm:"foreignKey:ThemeID"`
	CustomStorageMB   *int           `json:"custom_storage_mb,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

func (e *Event) HasPassword() bool {
	return e.PasswordHash != ""
}

// InUploadWindow reports whether guests may upload at t. Date-locked events
// accept guest uploads from StartsAt until one day after EndsAt.
func (e *Event) InUploadWindow(t time.Time) bool {
	if !e.IsDateLocked {
		return true
	}
	if t.Before(e.StartsAt) {
		return false
	}
	return !t.After(e.EndsAt.Add(24 * time.Hour))
}

type EventRequest struct {
	Title             string    `json:"title" validate:"required,max=200"`
	Description       string    `json:"description" validate:"max=2000"`
	Location          string    `json:"location" validate:"max=255"`
	Password          string    `json:"password" validate:"omitempty,min=4,max=72"`
	AllowGuestUploads bool      `json:"allow_guest_uploads"`
	StartsAt          time.Time `json:"starts_at" validate:"required"`
	EndsAt            time.Time `json:"ends_at" validate:"required,gtefield=StartsAt"`
}

type UpdateEventRequest struct {
	Title             *string    `json:"title" validate:"omitempty,max=200"`
	Description       *string    `json:"description" validate:"omitempty,max=2000"`
	Location          *string    `json:"location" validate:"omitempty,max=255"`
	AllowGuestUploads *bool      `json:"allow_guest_uploads"`
	StartsAt          *time.Time `json:"starts_at"`
	EndsAt            *time.Time `json:"ends_at"`
}

type EventPasswordRequest struct {
	Password string `json:"password" validate:"omitempty,min=4,max=72"`
}

type EventThemeRequest struct {
	ThemeID *uint `json:"theme_id"`
}

type CustomStorageRequest struct {
	StorageMB *int `json:"storage_mb" validate:"omitempty,min=1"`
}

// PublicEventResponse is what a guest sees before entering the gate.
type PublicEventResponse struct {
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	HasPassword bool      `json:"has_password"`
	Theme       *Theme    `json:"theme,omitempty"`
}

func NewPublicEventResponse(e *Event) PublicEventResponse {
	return PublicEventResponse{
		Code:        e.Code,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		HasPassword: e.HasPassword(),
		Theme:       e.Theme,
	}
}
