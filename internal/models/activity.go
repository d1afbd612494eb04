package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is an append-only record of a mutating operation. Entries are
// never updated or deleted.
type ActivityLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null;index" json:"user_id"`
	Action    string            `gorm:"size:64;not null" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}
