package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// EventPlan is a purchasable tier. Features holds the quota map consulted by
// event, guest and storage limits.
type EventPlan struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;size:64;not null"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	PriceCents  int64          `json:"price_cents" gorm:"not null"`
	Currency    string         `json:"currency" gorm:"size:3;not null;default:'usd'"`
	Features    datatypes.JSON `json:"features"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	SortOrder   int            `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AddonCatalog is a per-event add-on (extra storage, extra guests...).
type AddonCatalog struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;size:64;not null"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	PriceCents  int64          `json:"price_cents" gorm:"not null"`
	Currency    string         `json:"currency" gorm:"size:3;not null;default:'usd'"`
	Features    datatypes.JSON `json:"features"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	SortOrder   int            `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (AddonCatalog) TableName() string {
	return "addon_catalog"
}

// PlanFeatures is the typed view of a plan or add-on feature map. Zero means
// "not granted" for every field.
type PlanFeatures struct {
	MaxEvents      int  `json:"max_events,omitempty"`
	MaxGuests      int  `json:"max_guests,omitempty"`
	MaxStorageMB   int  `json:"max_storage_mb,omitempty"`
	RetentionDays  int  `json:"retention_days,omitempty"`
	AllowVideo     bool `json:"allow_video,omitempty"`
	ExtraStorageMB int  `json:"extra_storage_mb,omitempty"`
	ExtraGuests    int  `json:"extra_guests,omitempty"`
}

// ParseFeatures decodes a feature map. Empty or null input yields zero features.
func ParseFeatures(raw datatypes.JSON) (PlanFeatures, error) {
	var f PlanFeatures
	if len(raw) == 0 || string(raw) == "null" {
		return f, nil
	}
	err := json.Unmarshal(raw, &f)
	return f, err
}

// MustFeatures encodes f for seeding and tests.
func MustFeatures(f PlanFeatures) datatypes.JSON {
	b, err := json.Marshal(f)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}

func (f PlanFeatures) IsZero() bool {
	return f == PlanFeatures{}
}

type PlanSummary struct {
	ID   uint   `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type ActivePlanResponse struct {
	Plan     *EventPlan   `json:"plan"`
	Features PlanFeatures `json:"features"`
}

type UpdateCatalogRequest struct {
	Name       *string       `json:"name"`
	PriceCents *int64        `json:"price_cents" validate:"omitempty,min=0"`
	IsActive   *bool         `json:"is_active"`
	Features   *PlanFeatures `json:"features"`
}
