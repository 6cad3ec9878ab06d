package models

import (
	"time"

	"gorm.io/datatypes"
)

// Building represents a campus building exposed through the public catalogue.
type Building struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"size:128;not null" json:"name"`
	Code        string            `gorm:"size:32;uniqueIndex" json:"code"`
	Description string            `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
