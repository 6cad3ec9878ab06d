package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event lifecycle states.
const (
	EventStatusScheduled = "programado"
	EventStatusOngoing   = "en_curso"
	EventStatusFinished  = "finalizado"
	EventStatusCancelled = "cancelado"
)

// ValidEventStatus reports whether status belongs to the event state enum.
func ValidEventStatus(status string) bool {
	switch status {
	case EventStatusScheduled, EventStatusOngoing, EventStatusFinished, EventStatusCancelled:
		return true
	}
	return false
}

// Event represents a scheduled campus event.
type Event struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"size:160;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	DateTime    time.Time                   `gorm:"column:date_time;index" json:"date_time"`
	Categories  datatypes.JSONSlice[string] `gorm:"type:json" json:"categories"`
	BuildingID  *uint                       `gorm:"index" json:"building_id"`
	Status      string                      `gorm:"size:32;not null;default:programado" json:"status"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}
