package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// EventViewUpdate describes one event view to be folded into the (event, day)
// counter row. Date must already be truncated in the analytics timezone.
type EventViewUpdate struct {
	EventID       uint
	EventTitle    string
	Date          time.Time
	Authenticated bool
	BuildingID    *uint
	Categories    []string
	Status        string
}

// EventStatsFilter scopes grouped event statistics queries.
type EventStatsFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
}

// EventStatRow is one grouped row of the event statistics report.
type EventStatRow struct {
	EventID             uint   `json:"event_id"`
	EventTitle          string `json:"event_title"`
	TotalViews          int64  `json:"total_views"`
	TotalUniqueVisitors int64  `json:"total_unique_visitors"`
	PopularityScore     int64  `json:"popularity_score"`
}

// EventPopularityRow aggregates one event over the trailing scoring window.
type EventPopularityRow struct {
	EventID        uint   `json:"event_id"`
	EventTitle     string `json:"event_title"`
	TotalViews     int64  `json:"total_views"`
	UniqueVisitors int64  `json:"unique_visitors"`
	RecentViews    int64  `json:"recent_views"`
}

// EventAnalyticsRepository owns the event daily counter rows. The popularity
// score column is written only through BroadcastPopularity.
type EventAnalyticsRepository interface {
	IncrementView(ctx context.Context, update EventViewUpdate) error
	FindByDay(ctx context.Context, eventID uint, date time.Time) (*models.EventDailyAnalytics, error)
	PopularityWindow(ctx context.Context, since, recentSince time.Time) ([]EventPopularityRow, error)
	BroadcastPopularity(ctx context.Context, eventID uint, score int64) error
	SetAttendancePrediction(ctx context.Context, id uint, prediction float64) error
	Stats(ctx context.Context, filter EventStatsFilter) ([]EventStatRow, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type eventAnalyticsRepository struct {
	db *gorm.DB
}

// NewEventAnalyticsRepository constructs the event analytics repository.
func NewEventAnalyticsRepository(db *gorm.DB) EventAnalyticsRepository {
	return &eventAnalyticsRepository{db: db}
}

// IncrementView upserts the (event, day) row with atomic counter increments.
// Title, building, categories and status are fixed at the values seen on the
// first view of the day.
func (r *eventAnalyticsRepository) IncrementView(ctx context.Context, update EventViewUpdate) error {
	row := models.EventDailyAnalytics{
		EventID:    update.EventID,
		EventTitle: update.EventTitle,
		Date:       update.Date,
		ViewCount:  1,
		BuildingID: update.BuildingID,
		Categories: datatypes.NewJSONSlice(update.Categories),
		Status:     update.Status,
	}

	assignments := map[string]interface{}{
		"view_count": gorm.Expr("view_count + 1"),
		"status":     update.Status,
		"updated_at": time.Now(),
	}

	if update.Authenticated {
		row.UniqueVisitors = 1
		assignments["unique_visitors"] = gorm.Expr("unique_visitors + 1")
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&row).Error
}

func (r *eventAnalyticsRepository) FindByDay(ctx context.Context, eventID uint, date time.Time) (*models.EventDailyAnalytics, error) {
	var row models.EventDailyAnalytics
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND date = ?", eventID, date).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (r *eventAnalyticsRepository) PopularityWindow(ctx context.Context, since, recentSince time.Time) ([]EventPopularityRow, error) {
	var rows []EventPopularityRow
	err := r.db.WithContext(ctx).
		Model(&models.EventDailyAnalytics{}).
		Where("date >= ?", since).
		Select("event_id, MAX(event_title) AS event_title, SUM(view_count) AS total_views, SUM(unique_visitors) AS unique_visitors, SUM(CASE WHEN date >= ? THEN view_count ELSE 0 END) AS recent_views", recentSince).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// BroadcastPopularity writes the recomputed score onto every analytics row of
// the event, not only rows inside the scoring window.
func (r *eventAnalyticsRepository) BroadcastPopularity(ctx context.Context, eventID uint, score int64) error {
	return r.db.WithContext(ctx).
		Model(&models.EventDailyAnalytics{}).
		Where("event_id = ?", eventID).
		Update("popularity_score", score).Error
}

func (r *eventAnalyticsRepository) SetAttendancePrediction(ctx context.Context, id uint, prediction float64) error {
	return r.db.WithContext(ctx).
		Model(&models.EventDailyAnalytics{}).
		Where("id = ?", id).
		Update("attendance_prediction", prediction).Error
}

func (r *eventAnalyticsRepository) Stats(ctx context.Context, filter EventStatsFilter) ([]EventStatRow, error) {
	query := r.db.WithContext(ctx).Model(&models.EventDailyAnalytics{})

	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var rows []EventStatRow
	err := query.
		Select("event_id, MAX(event_title) AS event_title, SUM(view_count) AS total_views, SUM(unique_visitors) AS total_unique_visitors, MAX(popularity_score) AS popularity_score").
		Group("event_id").
		Order("total_views DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *eventAnalyticsRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("date < ?", cutoff).
		Delete(&models.EventDailyAnalytics{})
	return result.RowsAffected, result.Error
}
