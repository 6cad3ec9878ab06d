package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/repository"
)

// StatsQuery narrows the grouped statistics reports.
type StatsQuery struct {
	StartDate  *time.Time
	EndDate    *time.Time
	BuildingID *uint
	Status     string
}

// BuildingStatsResponse wraps the grouped building report.
type BuildingStatsResponse struct {
	Items       []repository.BuildingStatRow `json:"items"`
	GeneratedAt time.Time                    `json:"generated_at"`
}

// EventStatsResponse wraps the grouped event report.
type EventStatsResponse struct {
	Items       []repository.EventStatRow `json:"items"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// PeakHourEntry is one hour bucket of a building's day, with a zero-padded
// display label such as "07:00".
type PeakHourEntry struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// BuildingPeakHoursEntry is one building-day of the peak-hours report.
type BuildingPeakHoursEntry struct {
	BuildingID   uint            `json:"building_id"`
	BuildingName string          `json:"building_name"`
	Date         time.Time       `json:"date"`
	ViewCount    int64           `json:"view_count"`
	PeakHours    []PeakHourEntry `json:"peak_hours"`
}

// PeakHoursResponse wraps the peak-hours report.
type PeakHoursResponse struct {
	Items       []BuildingPeakHoursEntry `json:"items"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// DashboardResponse is the aggregated analytics dashboard bundle.
type DashboardResponse struct {
	ActivityByAction []repository.ActionCount     `json:"activity_by_action"`
	TopBuildings     []repository.BuildingStatRow `json:"top_buildings"`
	TopEvents        []repository.EventStatRow    `json:"top_events"`
	WindowDays       int                          `json:"window_days"`
	GeneratedAt      time.Time                    `json:"generated_at"`
	CacheHit         bool                         `json:"cache_hit"`
}
