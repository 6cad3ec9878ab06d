package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// BuildingViewUpdate describes one building view to be folded into the
// (building, day) counter row. Date and Hour must already be expressed in the
// analytics timezone.
type BuildingViewUpdate struct {
	BuildingID          uint
	BuildingName        string
	Date                time.Time
	DayOfWeek           string
	Hour                int
	Authenticated       bool
	UserRole            string
	ViewDurationSeconds *float64
}

// BuildingStatsFilter scopes grouped building statistics queries.
type BuildingStatsFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	BuildingID *uint
}

// BuildingStatRow is one grouped row of the building statistics report.
type BuildingStatRow struct {
	BuildingID          uint    `json:"building_id"`
	BuildingName        string  `json:"building_name"`
	TotalViews          int64   `json:"total_views"`
	TotalUniqueVisitors int64   `json:"total_unique_visitors"`
	AvgViewDuration     float64 `json:"avg_view_duration"`
}

// PeakHoursFilter scopes the recent peak-hours report.
type PeakHoursFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	BuildingID *uint
	Limit      int
}

// BuildingAnalyticsRepository owns the building daily counter rows and their
// peak-hour buckets.
type BuildingAnalyticsRepository interface {
	IncrementView(ctx context.Context, update BuildingViewUpdate) error
	FindByDay(ctx context.Context, buildingID uint, date time.Time) (*models.BuildingDailyAnalytics, error)
	PeakHoursForDay(ctx context.Context, buildingID uint, date time.Time) ([]models.BuildingPeakHour, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.BuildingDailyAnalytics, error)
	ListPeakHoursByDate(ctx context.Context, date time.Time) ([]models.BuildingPeakHour, error)
	Stats(ctx context.Context, filter BuildingStatsFilter) ([]BuildingStatRow, error)
	ListRecent(ctx context.Context, filter PeakHoursFilter) ([]models.BuildingDailyAnalytics, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type buildingAnalyticsRepository struct {
	db *gorm.DB
}

// NewBuildingAnalyticsRepository constructs the building analytics repository.
func NewBuildingAnalyticsRepository(db *gorm.DB) BuildingAnalyticsRepository {
	return &buildingAnalyticsRepository{db: db}
}

// IncrementView applies all field deltas of one view as conflict-upserts, so
// concurrent views of the same (building, day) never lose an increment. The
// running mean folds into the same UPDATE: assignment expressions evaluate
// against pre-update column values, so view_count there is still n-1.
func (r *buildingAnalyticsRepository) IncrementView(ctx context.Context, update BuildingViewUpdate) error {
	row := models.BuildingDailyAnalytics{
		BuildingID:   update.BuildingID,
		BuildingName: update.BuildingName,
		Date:         update.Date,
		ViewCount:    1,
		DayOfWeek:    update.DayOfWeek,
	}

	assignments := map[string]interface{}{
		"view_count":  gorm.Expr("view_count + 1"),
		"day_of_week": update.DayOfWeek,
		"updated_at":  time.Now(),
	}

	if update.Authenticated {
		row.UniqueVisitors = 1
		assignments["unique_visitors"] = gorm.Expr("unique_visitors + 1")

		if column, ok := models.RoleVisitorColumn(update.UserRole); ok {
			switch update.UserRole {
			case models.RoleEstudiante:
				row.VisitorsEstudiante = 1
			case models.RoleProfesor:
				row.VisitorsProfesor = 1
			case models.RoleAdministrador:
				row.VisitorsAdministrador = 1
			}
			assignments[column] = gorm.Expr(column + " + 1")
		}
	}

	if update.ViewDurationSeconds != nil {
		row.AverageViewDuration = *update.ViewDurationSeconds
		assignments["average_view_duration"] = gorm.Expr(
			"(average_view_duration * view_count + ?) / (view_count + 1)",
			*update.ViewDurationSeconds,
		)
	}

	bucket := models.BuildingPeakHour{
		BuildingID: update.BuildingID,
		Date:       update.Date,
		Hour:       update.Hour,
		Count:      1,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "building_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(assignments),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "building_id"}, {Name: "date"}, {Name: "hour"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1")}),
		}).Create(&bucket).Error
	})
}

func (r *buildingAnalyticsRepository) FindByDay(ctx context.Context, buildingID uint, date time.Time) (*models.BuildingDailyAnalytics, error) {
	var row models.BuildingDailyAnalytics
	err := r.db.WithContext(ctx).
		Where("building_id = ? AND date = ?", buildingID, date).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (r *buildingAnalyticsRepository) PeakHoursForDay(ctx context.Context, buildingID uint, date time.Time) ([]models.BuildingPeakHour, error) {
	var buckets []models.BuildingPeakHour
	err := r.db.WithContext(ctx).
		Where("building_id = ? AND date = ?", buildingID, date).
		Order("hour ASC").
		Find(&buckets).Error
	if err != nil {
		return nil, err
	}

	return buckets, nil
}

func (r *buildingAnalyticsRepository) ListByDate(ctx context.Context, date time.Time) ([]models.BuildingDailyAnalytics, error) {
	var rows []models.BuildingDailyAnalytics
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("building_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *buildingAnalyticsRepository) ListPeakHoursByDate(ctx context.Context, date time.Time) ([]models.BuildingPeakHour, error) {
	var buckets []models.BuildingPeakHour
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("building_id ASC, hour ASC").
		Find(&buckets).Error
	if err != nil {
		return nil, err
	}

	return buckets, nil
}

func (r *buildingAnalyticsRepository) Stats(ctx context.Context, filter BuildingStatsFilter) ([]BuildingStatRow, error) {
	query := r.db.WithContext(ctx).Model(&models.BuildingDailyAnalytics{})

	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.BuildingID != nil {
		query = query.Where("building_id = ?", *filter.BuildingID)
	}

	var rows []BuildingStatRow
	err := query.
		Select("building_id, MAX(building_name) AS building_name, SUM(view_count) AS total_views, SUM(unique_visitors) AS total_unique_visitors, AVG(average_view_duration) AS avg_view_duration").
		Group("building_id").
		Order("total_views DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *buildingAnalyticsRepository) ListRecent(ctx context.Context, filter PeakHoursFilter) ([]models.BuildingDailyAnalytics, error) {
	query := r.db.WithContext(ctx).Model(&models.BuildingDailyAnalytics{})

	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.BuildingID != nil {
		query = query.Where("building_id = ?", *filter.BuildingID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 13
	}

	var rows []models.BuildingDailyAnalytics
	err := query.
		Order("date DESC, view_count DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *buildingAnalyticsRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("date < ?", cutoff).Delete(&models.BuildingDailyAnalytics{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected

		return tx.Where("date < ?", cutoff).Delete(&models.BuildingPeakHour{}).Error
	})

	return deleted, err
}
