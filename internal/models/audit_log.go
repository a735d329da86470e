package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ActorUserID *uint          `json:"actor_user_id,omitempty" gorm:"index"`
	Action      string         `json:"action" gorm:"size:64;not null;index"`
	EntityType  string         `json:"entity_type" gorm:"size:64;not null"`
	EntityID    uint           `json:"entity_id"`
	Detail      datatypes.JSON `json:"detail,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty" gorm:"size:64"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}

// AppErrorLog is the catch-all table fed by the logger for ERROR and above.
type AppErrorLog struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Level      string         `json:"level" gorm:"size:16;not null"`
	Message    string         `json:"message" gorm:"type:text;not null"`
	LoggerName string         `json:"logger_name,omitempty" gorm:"size:128"`
	Caller     string         `json:"caller,omitempty"`
	Stack      string         `json:"stack,omitempty" gorm:"type:text"`
	Fields     datatypes.JSON `json:"fields,omitempty"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
}

// LoginAttempt backs the database login limiter. Key is "ip|email".
type LoginAttempt struct {
	Key         string     `gorm:"primaryKey;column:attempt_key;size:320"`
	Failures    int        `gorm:"not null;default:0"`
	WindowStart time.Time  `gorm:"not null"`
	LockedUntil *time.Time `gorm:"index"`
	UpdatedAt   time.Time
}
