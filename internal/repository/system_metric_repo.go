package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// SystemMetricRepository persists write-once metric samples.
type SystemMetricRepository interface {
	Create(ctx context.Context, sample *models.SystemMetric) error
	ListByType(ctx context.Context, metricType string, since time.Time, limit int) ([]models.SystemMetric, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type systemMetricRepository struct {
	db *gorm.DB
}

// NewSystemMetricRepository constructs the system metric repository.
func NewSystemMetricRepository(db *gorm.DB) SystemMetricRepository {
	return &systemMetricRepository{db: db}
}

func (r *systemMetricRepository) Create(ctx context.Context, sample *models.SystemMetric) error {
	return r.db.WithContext(ctx).Create(sample).Error
}

func (r *systemMetricRepository) ListByType(ctx context.Context, metricType string, since time.Time, limit int) ([]models.SystemMetric, error) {
	query := r.db.WithContext(ctx).
		Where("metric_type = ? AND timestamp >= ?", metricType, since).
		Order("timestamp DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var samples []models.SystemMetric
	if err := query.Find(&samples).Error; err != nil {
		return nil, err
	}

	return samples, nil
}

func (r *systemMetricRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.SystemMetric{})
	return result.RowsAffected, result.Error
}
