package models

import "time"

type Theme struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Slug         string    `json:"slug" gorm:"uniqueIndex;size:64;not null"`
	Name         string    `json:"name" gorm:"not null"`
	PrimaryColor string    `json:"primary_color" gorm:"size:16"`
	AccentColor  string    `json:"accent_color" gorm:"size:16"`
	FontFamily   string    `json:"font_family"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ThemeRequest creates or replaces a theme by slug (admin).
type ThemeRequest struct {
	Slug         string `json:"slug" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=120"`
	PrimaryColor string `json:"primary_color" validate:"required,hexcolor6"`
	AccentColor  string `json:"accent_color" validate:"required,hexcolor6"`
	FontFamily   string `json:"font_family" validate:"max=120"`
	IsActive     bool   `json:"is_active"`
}
