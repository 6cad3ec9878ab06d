package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// BuildingListRequest defines filters for listing buildings.
type BuildingListRequest struct {
	Page     int
	PageSize int
	Search   string
}

// BuildingCreateRequest captures a new building payload.
type BuildingCreateRequest struct {
	Name        string                 `json:"name" validate:"required,min=1,max=128"`
	Code        string                 `json:"code" validate:"required,min=1,max=32"`
	Description string                 `json:"description" validate:"max=4000"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// BuildingUpdateRequest captures partial update payloads for buildings.
type BuildingUpdateRequest struct {
	Name        *string                `json:"name" validate:"omitempty,min=1,max=128"`
	Code        *string                `json:"code" validate:"omitempty,min=1,max=32"`
	Description *string                `json:"description" validate:"omitempty,max=4000"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// BuildingResponse serializes a building.
type BuildingResponse struct {
	ID          uint                   `json:"id"`
	Name        string                 `json:"name"`
	Code        string                 `json:"code"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// BuildingListResponse wraps a paginated building list.
type BuildingListResponse struct {
	Items      []BuildingResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewBuildingResponse converts a building model into a DTO.
func NewBuildingResponse(building models.Building) BuildingResponse {
	return BuildingResponse{
		ID:          building.ID,
		Name:        building.Name,
		Code:        building.Code,
		Description: building.Description,
		Metadata:    building.Metadata,
		CreatedAt:   building.CreatedAt,
		UpdatedAt:   building.UpdatedAt,
	}
}

// EventListRequest defines filters for listing events.
type EventListRequest struct {
	Page       int
	PageSize   int
	Search     string
	Status     string
	BuildingID *uint
}

// EventCreateRequest captures a new event payload.
type EventCreateRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=160"`
	Description string    `json:"description" validate:"max=4000"`
	DateTime    time.Time `json:"date_time" validate:"required"`
	Categories  []string  `json:"categories" validate:"omitempty,dive,min=1,max=64"`
	BuildingID  *uint     `json:"building_id"`
	Status      string    `json:"status" validate:"omitempty,oneof=programado en_curso finalizado cancelado"`
}

// EventUpdateRequest captures partial update payloads for events.
type EventUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=160"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	DateTime    *time.Time `json:"date_time"`
	Categories  []string   `json:"categories" validate:"omitempty,dive,min=1,max=64"`
	BuildingID  *uint      `json:"building_id"`
	Status      *string    `json:"status" validate:"omitempty,oneof=programado en_curso finalizado cancelado"`
}

// EventResponse serializes an event.
type EventResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	Categories  []string  `json:"categories"`
	BuildingID  *uint     `json:"building_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventListResponse wraps a paginated event list.
type EventListResponse struct {
	Items      []EventResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}

// NewEventResponse converts an event model into a DTO.
func NewEventResponse(event models.Event) EventResponse {
	return EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		DateTime:    event.DateTime,
		Categories:  event.Categories,
		BuildingID:  event.BuildingID,
		Status:      event.Status,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

// CategoryCreateRequest captures a new category payload.
type CategoryCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

// CategoryResponse serializes a category.
type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NewCategoryResponse converts a category model into a DTO.
func NewCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{ID: category.ID, Name: category.Name}
}
