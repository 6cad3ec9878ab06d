package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// Actor identifies the authenticated user behind a mutation, for the activity
// trail.
type Actor struct {
	ID    *uint
	Email string
	Role  string
}

// BuildingService manages the building catalogue.
type BuildingService interface {
	List(ctx context.Context, req dto.BuildingListRequest) (dto.BuildingListResponse, error)
	Get(ctx context.Context, id uint) (dto.BuildingResponse, error)
	Create(ctx context.Context, payload dto.BuildingCreateRequest) (dto.BuildingResponse, error)
	Update(ctx context.Context, id uint, payload dto.BuildingUpdateRequest) (dto.BuildingResponse, error)
	Delete(ctx context.Context, id uint) error
}

type buildingService struct {
	repo      repository.BuildingRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewBuildingService constructs the building catalogue service.
func NewBuildingService(repo repository.BuildingRepository, validate *validator.Validate, logger zerolog.Logger) BuildingService {
	return &buildingService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "building_service").Logger(),
	}
}

func (s *buildingService) List(ctx context.Context, req dto.BuildingListRequest) (dto.BuildingListResponse, error) {
	buildings, total, err := s.repo.List(ctx, repository.BuildingFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.BuildingListResponse{}, err
	}

	items := make([]dto.BuildingResponse, 0, len(buildings))
	for _, building := range buildings {
		items = append(items, dto.NewBuildingResponse(building))
	}

	return dto.BuildingListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *buildingService) Get(ctx context.Context, id uint) (dto.BuildingResponse, error) {
	building, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.BuildingResponse{}, ErrNotFound
	}
	if err != nil {
		return dto.BuildingResponse{}, err
	}

	return dto.NewBuildingResponse(building), nil
}

func (s *buildingService) Create(ctx context.Context, payload dto.BuildingCreateRequest) (dto.BuildingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BuildingResponse{}, err
	}

	building := models.Building{
		Name:        strings.TrimSpace(payload.Name),
		Code:        strings.ToUpper(strings.TrimSpace(payload.Code)),
		Description: strings.TrimSpace(payload.Description),
		Metadata:    datatypes.JSONMap(payload.Metadata),
	}

	if err := s.repo.Create(ctx, &building); err != nil {
		s.logger.Error().Err(err).Str("code", building.Code).Msg("failed to create building")
		return dto.BuildingResponse{}, err
	}

	return dto.NewBuildingResponse(building), nil
}

func (s *buildingService) Update(ctx context.Context, id uint, payload dto.BuildingUpdateRequest) (dto.BuildingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BuildingResponse{}, err
	}

	building, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.BuildingResponse{}, ErrNotFound
	}
	if err != nil {
		return dto.BuildingResponse{}, err
	}

	if payload.Name != nil {
		building.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Code != nil {
		building.Code = strings.ToUpper(strings.TrimSpace(*payload.Code))
	}
	if payload.Description != nil {
		building.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Metadata != nil {
		building.Metadata = datatypes.JSONMap(payload.Metadata)
	}

	if err := s.repo.Update(ctx, &building); err != nil {
		s.logger.Error().Err(err).Uint("building_id", id).Msg("failed to update building")
		return dto.BuildingResponse{}, err
	}

	return dto.NewBuildingResponse(building), nil
}

func (s *buildingService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}

// EventService manages the event catalogue. Mutations append activity-log
// entries through the recorder; recording failures never fail the mutation.
type EventService interface {
	List(ctx context.Context, req dto.EventListRequest) (dto.EventListResponse, error)
	Get(ctx context.Context, id uint) (dto.EventResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.EventCreateRequest) (dto.EventResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.EventUpdateRequest) (dto.EventResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type eventService struct {
	repo      repository.EventRepository
	recorder  RecorderService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEventService constructs the event catalogue service.
func NewEventService(repo repository.EventRepository, recorder RecorderService, validate *validator.Validate, logger zerolog.Logger) EventService {
	return &eventService{
		repo:      repo,
		recorder:  recorder,
		validator: validate,
		logger:    logger.With().Str("component", "event_service").Logger(),
	}
}

func (s *eventService) List(ctx context.Context, req dto.EventListRequest) (dto.EventListResponse, error) {
	events, total, err := s.repo.List(ctx, repository.EventFilter{
		Search:     req.Search,
		Status:     req.Status,
		BuildingID: req.BuildingID,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		return dto.EventListResponse{}, err
	}

	items := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, dto.NewEventResponse(event))
	}

	return dto.EventListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *eventService) Get(ctx context.Context, id uint) (dto.EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EventResponse{}, ErrNotFound
	}
	if err != nil {
		return dto.EventResponse{}, err
	}

	return dto.NewEventResponse(event), nil
}

func (s *eventService) Create(ctx context.Context, actor Actor, payload dto.EventCreateRequest) (dto.EventResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, err
	}

	status := payload.Status
	if status == "" {
		status = models.EventStatusScheduled
	}

	event := models.Event{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		DateTime:    payload.DateTime,
		Categories:  datatypes.NewJSONSlice(payload.Categories),
		BuildingID:  payload.BuildingID,
		Status:      status,
	}

	if err := s.repo.Create(ctx, &event); err != nil {
		s.logger.Error().Err(err).Str("title", event.Title).Msg("failed to create event")
		return dto.EventResponse{}, err
	}

	s.recordMutation(ctx, actor, models.ActionCreateEvent, event.ID)
	return dto.NewEventResponse(event), nil
}

func (s *eventService) Update(ctx context.Context, actor Actor, id uint, payload dto.EventUpdateRequest) (dto.EventResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, err
	}

	event, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EventResponse{}, ErrNotFound
	}
	if err != nil {
		return dto.EventResponse{}, err
	}

	if payload.Title != nil {
		event.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		event.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.DateTime != nil {
		event.DateTime = *payload.DateTime
	}
	if payload.Categories != nil {
		event.Categories = datatypes.NewJSONSlice(payload.Categories)
	}
	if payload.BuildingID != nil {
		event.BuildingID = payload.BuildingID
	}
	if payload.Status != nil {
		event.Status = *payload.Status
	}

	if err := s.repo.Update(ctx, &event); err != nil {
		s.logger.Error().Err(err).Uint("event_id", id).Msg("failed to update event")
		return dto.EventResponse{}, err
	}

	s.recordMutation(ctx, actor, models.ActionUpdateEvent, event.ID)
	return dto.NewEventResponse(event), nil
}

func (s *eventService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recordMutation(ctx, actor, models.ActionDeleteEvent, id)
	return nil
}

func (s *eventService) recordMutation(ctx context.Context, actor Actor, action string, eventID uint) {
	if s.recorder == nil {
		return
	}

	entry := ActivityEntry{
		UserID:       actor.ID,
		UserEmail:    actor.Email,
		UserRole:     actor.Role,
		Action:       action,
		ResourceType: models.ResourceEvent,
		ResourceID:   uintToString(eventID),
	}
	if err := s.recorder.RecordActivity(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Uint("event_id", eventID).Msg("failed to record event mutation")
	}
}

// CategoryService manages event category labels.
type CategoryService interface {
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, payload dto.CategoryCreateRequest) (dto.CategoryResponse, error)
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	repo      repository.CategoryRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCategoryService constructs the category service.
func NewCategoryService(repo repository.CategoryRepository, validate *validator.Validate, logger zerolog.Logger) CategoryService {
	return &categoryService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "category_service").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, dto.NewCategoryResponse(category))
	}

	return items, nil
}

func (s *categoryService) Create(ctx context.Context, payload dto.CategoryCreateRequest) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	category := models.Category{Name: strings.TrimSpace(payload.Name)}
	if err := s.repo.Create(ctx, &category); err != nil {
		s.logger.Error().Err(err).Str("name", category.Name).Msg("failed to create category")
		return dto.CategoryResponse{}, err
	}

	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func paginationMeta(page, pageSize int, total int64) dto.PaginationMeta {
	meta := dto.PaginationMeta{
		Page:       maxInt(page, 1),
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		meta.TotalPages = 1
	}
	return meta
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
