package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is the raw log of every delivery from a payment provider.
// (provider, provider_event_id) is unique; a row with ProcessedAt set has
// been fully handled and later deliveries of it are ignored.
type WebhookEvent struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"size:32;not null;uniqueIndex:idx_webhook_provider_event,priority:1"`
	ProviderEventID string         `json:"provider_event_id" gorm:"size:255;not null;uniqueIndex:idx_webhook_provider_event,priority:2"`
	EventType       string         `json:"event_type" gorm:"size:128;not null;index"`
	Payload         datatypes.JSON `json:"payload"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
	ProcessingError string         `json:"processing_error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
