package models

import (
	"time"

	"gorm.io/datatypes"
)

// Spanish weekday names stored redundantly on daily analytics rows.
var spanishDays = [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

// SpanishDayName returns the lowercase Spanish name for a weekday.
func SpanishDayName(day time.Weekday) string {
	return spanishDays[int(day)%7]
}

// RoleVisitorColumn maps a recognised user role to the per-role visitor
// counter column on building analytics rows. The second return is false for
// roles outside the enum; those views still count, just without a breakdown.
func RoleVisitorColumn(role string) (string, bool) {
	switch role {
	case RoleEstudiante:
		return "visitors_estudiante", true
	case RoleProfesor:
		return "visitors_profesor", true
	case RoleAdministrador:
		return "visitors_administrador", true
	}
	return "", false
}

// BuildingDailyAnalytics accumulates per-building, per-day view counters.
// Exactly zero or one row exists per (building, day); the recorder creates the
// row lazily on the first view and every later view of that day increments it
// in place. UniqueVisitors counts authenticated views, it is NOT deduplicated
// per distinct user. SearchCount is schema parity only; searches are tallied
// through the search_building activity action.
type BuildingDailyAnalytics struct {
	ID                    uint              `gorm:"primaryKey" json:"id"`
	BuildingID            uint              `gorm:"not null;uniqueIndex:idx_building_analytics_day,priority:1" json:"building_id"`
	BuildingName          string            `gorm:"size:128;not null" json:"building_name"`
	Date                  time.Time         `gorm:"type:date;not null;uniqueIndex:idx_building_analytics_day,priority:2;index" json:"date"`
	ViewCount             int64             `gorm:"not null;default:0" json:"view_count"`
	SearchCount           int64             `gorm:"not null;default:0" json:"search_count"`
	UniqueVisitors        int64             `gorm:"not null;default:0" json:"unique_visitors"`
	VisitorsEstudiante    int64             `gorm:"column:visitors_estudiante;not null;default:0" json:"visitors_estudiante"`
	VisitorsProfesor      int64             `gorm:"column:visitors_profesor;not null;default:0" json:"visitors_profesor"`
	VisitorsAdministrador int64             `gorm:"column:visitors_administrador;not null;default:0" json:"visitors_administrador"`
	AverageViewDuration   float64           `gorm:"not null;default:0" json:"average_view_duration"`
	DayOfWeek             string            `gorm:"size:16" json:"day_of_week"`
	Metadata              datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// TableName returns the analytics collection name.
func (BuildingDailyAnalytics) TableName() string {
	return "building_analytics"
}

// VisitorsByRole exposes the role counters as the map shape reports expect.
func (a BuildingDailyAnalytics) VisitorsByRole() map[string]int64 {
	return map[string]int64{
		RoleEstudiante:    a.VisitorsEstudiante,
		RoleProfesor:      a.VisitorsProfesor,
		RoleAdministrador: a.VisitorsAdministrador,
	}
}

// BuildingPeakHour is one observed-hour bucket of a building's day. The sparse
// set of buckets replaces the embedded peak-hours array of the Mongo layout so
// each bucket can be incremented with a single conflict-upsert.
type BuildingPeakHour struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	BuildingID uint      `gorm:"not null;uniqueIndex:idx_building_peak_bucket,priority:1" json:"building_id"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:idx_building_peak_bucket,priority:2;index" json:"date"`
	Hour       int       `gorm:"not null;uniqueIndex:idx_building_peak_bucket,priority:3" json:"hour"`
	Count      int64     `gorm:"not null;default:0" json:"count"`
}

// TableName returns the peak-hour bucket table name.
func (BuildingPeakHour) TableName() string {
	return "building_peak_hours"
}

// EventDailyAnalytics accumulates per-event, per-day view counters. The write
// path owns the counters; PopularityScore is owned by the batch engine.
type EventDailyAnalytics struct {
	ID                   uint                        `gorm:"primaryKey" json:"id"`
	EventID              uint                        `gorm:"not null;uniqueIndex:idx_event_analytics_day,priority:1" json:"event_id"`
	EventTitle           string                      `gorm:"size:160;not null" json:"event_title"`
	Date                 time.Time                   `gorm:"type:date;not null;uniqueIndex:idx_event_analytics_day,priority:2;index" json:"date"`
	ViewCount            int64                       `gorm:"not null;default:0" json:"view_count"`
	UniqueVisitors       int64                       `gorm:"not null;default:0" json:"unique_visitors"`
	BuildingID           *uint                       `gorm:"index" json:"building_id"`
	Categories           datatypes.JSONSlice[string] `gorm:"type:json" json:"categories"`
	Status               string                      `gorm:"size:32;index" json:"status"`
	AttendancePrediction float64                     `gorm:"not null;default:0" json:"attendance_prediction"`
	ActualAttendance     *int64                      `json:"actual_attendance"`
	PopularityScore      int64                       `gorm:"not null;default:0" json:"popularity_score"`
	Metadata             datatypes.JSONMap           `gorm:"type:json" json:"metadata"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
}

// TableName returns the analytics collection name.
func (EventDailyAnalytics) TableName() string {
	return "event_analytics"
}
