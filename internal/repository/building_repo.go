package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// BuildingFilter describes pagination and search options for buildings.
type BuildingFilter struct {
	Search   string
	Page     int
	PageSize int
}

// BuildingRepository defines persistence operations for buildings.
type BuildingRepository interface {
	List(ctx context.Context, filter BuildingFilter) ([]models.Building, int64, error)
	GetByID(ctx context.Context, id uint) (models.Building, error)
	Create(ctx context.Context, building *models.Building) error
	Update(ctx context.Context, building *models.Building) error
	Delete(ctx context.Context, id uint) error
}

type buildingRepository struct {
	db *gorm.DB
}

// NewBuildingRepository instantiates a GORM-backed repository.
func NewBuildingRepository(db *gorm.DB) BuildingRepository {
	return &buildingRepository{db: db}
}

func (r *buildingRepository) List(ctx context.Context, filter BuildingFilter) ([]models.Building, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Building{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var buildings []models.Building
	if err := query.Order("name ASC").Find(&buildings).Error; err != nil {
		return nil, 0, err
	}

	return buildings, total, nil
}

func (r *buildingRepository) GetByID(ctx context.Context, id uint) (models.Building, error) {
	var building models.Building
	if err := r.db.WithContext(ctx).First(&building, id).Error; err != nil {
		return models.Building{}, err
	}

	return building, nil
}

func (r *buildingRepository) Create(ctx context.Context, building *models.Building) error {
	return r.db.WithContext(ctx).Create(building).Error
}

func (r *buildingRepository) Update(ctx context.Context, building *models.Building) error {
	return r.db.WithContext(ctx).Save(building).Error
}

func (r *buildingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Building{}, id).Error
}
