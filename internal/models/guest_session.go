package models

import "time"

// GuestSession identifies an anonymous guest that passed an event gate.
type GuestSession struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	EventID     uint      `json:"event_id" gorm:"not null;index"`
	Token       string    `json:"-" gorm:"uniqueIndex;size:36;not null"`
	DisplayName string    `json:"display_name" gorm:"size:80"`
	IPAddress   string    `json:"-" gorm:"size:64"`
	UserAgent   string    `json:"-"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type GuestEnterRequest struct {
	Password     string `json:"password" validate:"max=72"`
	DisplayName  string `json:"display_name" validate:"max=80"`
	CaptchaToken string `json:"captcha_token"`
}

type GuestEnterResponse struct {
	Event       PublicEventResponse `json:"event"`
	DisplayName string              `json:"display_name"`
}
