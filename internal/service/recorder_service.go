package service

import (
	"context"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// ActivityEntry captures one user-facing action to append to the trail.
type ActivityEntry struct {
	UserID       *uint
	UserEmail    string
	UserRole     string
	Action       string
	ResourceType string
	ResourceID   string
	Metadata     map[string]interface{}
	IPAddress    string
	UserAgent    string
	DeviceType   string
}

// BuildingViewInput describes one building detail view.
type BuildingViewInput struct {
	BuildingID          uint
	BuildingName        string
	Authenticated       bool
	UserRole            string
	ViewDurationSeconds *float64
}

// EventViewInput describes one event detail view.
type EventViewInput struct {
	EventID       uint
	EventTitle    string
	BuildingID    *uint
	Categories    []string
	Status        string
	Authenticated bool
}

// SystemMetricInput describes one metric sample.
type SystemMetricInput struct {
	MetricType string
	Value      float64
	Unit       string
	Endpoint   string
	ErrorCode  string
	Metadata   map[string]interface{}
}

// RecorderService is the single write path of the analytics pipeline. Every
// mutation it performs is a single insert or a single atomic upsert, so
// concurrent callers never lose counter increments.
type RecorderService interface {
	RecordActivity(ctx context.Context, entry ActivityEntry) error
	RecordBuildingView(ctx context.Context, input BuildingViewInput) error
	RecordEventView(ctx context.Context, input EventViewInput) error
	RecordSystemMetric(ctx context.Context, input SystemMetricInput) error
}

type recorderService struct {
	activities        repository.ActivityLogRepository
	buildingAnalytics repository.BuildingAnalyticsRepository
	eventAnalytics    repository.EventAnalyticsRepository
	metrics           repository.SystemMetricRepository
	location          *time.Location
	sanitizer         *bluemonday.Policy
	logger            zerolog.Logger
	now               func() time.Time
}

// NewRecorderService constructs the activity recorder. Day boundaries are
// computed in loc, never in the process-local zone.
func NewRecorderService(
	activities repository.ActivityLogRepository,
	buildingAnalytics repository.BuildingAnalyticsRepository,
	eventAnalytics repository.EventAnalyticsRepository,
	metrics repository.SystemMetricRepository,
	loc *time.Location,
	logger zerolog.Logger,
) RecorderService {
	return &recorderService{
		activities:        activities,
		buildingAnalytics: buildingAnalytics,
		eventAnalytics:    eventAnalytics,
		metrics:           metrics,
		location:          loc,
		sanitizer:         bluemonday.StrictPolicy(),
		logger:            logger.With().Str("component", "recorder_service").Logger(),
		now:               time.Now,
	}
}

func (s *recorderService) RecordActivity(ctx context.Context, entry ActivityEntry) error {
	action := strings.TrimSpace(entry.Action)
	if !models.ValidAction(action) {
		return validationErrorf("unknown action %q", entry.Action)
	}

	resourceType := strings.TrimSpace(entry.ResourceType)
	if resourceType == "" {
		resourceType = models.ResourceOther
	}
	if !models.ValidResourceType(resourceType) {
		return validationErrorf("unknown resource type %q", entry.ResourceType)
	}

	deviceType := strings.TrimSpace(entry.DeviceType)
	if deviceType == "" {
		deviceType = models.DeviceUnknown
	}
	if !models.ValidDeviceType(deviceType) {
		return validationErrorf("unknown device type %q", entry.DeviceType)
	}

	record := models.ActivityLog{
		UserID:       entry.UserID,
		UserEmail:    strings.TrimSpace(entry.UserEmail),
		UserRole:     strings.ToLower(strings.TrimSpace(entry.UserRole)),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   strings.TrimSpace(entry.ResourceID),
		Metadata:     s.scrubMetadata(entry.Metadata),
		IPAddress:    strings.TrimSpace(entry.IPAddress),
		UserAgent:    s.sanitizer.Sanitize(entry.UserAgent),
		DeviceType:   deviceType,
		Timestamp:    s.now(),
	}

	if err := s.activities.Create(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist activity entry")
		return err
	}

	return nil
}

func (s *recorderService) RecordBuildingView(ctx context.Context, input BuildingViewInput) error {
	if input.BuildingID == 0 {
		return validationErrorf("building id is required")
	}
	if input.ViewDurationSeconds != nil && *input.ViewDurationSeconds < 0 {
		return validationErrorf("view duration must not be negative")
	}

	local := s.now().In(s.location)
	update := repository.BuildingViewUpdate{
		BuildingID:          input.BuildingID,
		BuildingName:        strings.TrimSpace(input.BuildingName),
		Date:                dayOf(local),
		DayOfWeek:           models.SpanishDayName(local.Weekday()),
		Hour:                local.Hour(),
		Authenticated:       input.Authenticated,
		UserRole:            strings.ToLower(strings.TrimSpace(input.UserRole)),
		ViewDurationSeconds: input.ViewDurationSeconds,
	}

	if err := s.buildingAnalytics.IncrementView(ctx, update); err != nil {
		s.logger.Error().Err(err).Uint("building_id", input.BuildingID).Msg("failed to record building view")
		return err
	}

	return nil
}

func (s *recorderService) RecordEventView(ctx context.Context, input EventViewInput) error {
	if input.EventID == 0 {
		return validationErrorf("event id is required")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.EventStatusScheduled
	}
	if !models.ValidEventStatus(status) {
		return validationErrorf("unknown event status %q", input.Status)
	}

	local := s.now().In(s.location)
	update := repository.EventViewUpdate{
		EventID:       input.EventID,
		EventTitle:    strings.TrimSpace(input.EventTitle),
		Date:          dayOf(local),
		Authenticated: input.Authenticated,
		BuildingID:    input.BuildingID,
		Categories:    input.Categories,
		Status:        status,
	}

	if err := s.eventAnalytics.IncrementView(ctx, update); err != nil {
		s.logger.Error().Err(err).Uint("event_id", input.EventID).Msg("failed to record event view")
		return err
	}

	return nil
}

func (s *recorderService) RecordSystemMetric(ctx context.Context, input SystemMetricInput) error {
	metricType := strings.TrimSpace(input.MetricType)
	if !models.ValidMetricType(metricType) {
		return validationErrorf("unknown metric type %q", input.MetricType)
	}

	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = "ms"
	}

	sample := models.SystemMetric{
		MetricType: metricType,
		Value:      input.Value,
		Unit:       unit,
		Endpoint:   strings.TrimSpace(input.Endpoint),
		ErrorCode:  strings.TrimSpace(input.ErrorCode),
		Metadata:   s.scrubMetadata(input.Metadata),
		Timestamp:  s.now(),
	}

	if err := s.metrics.Create(ctx, &sample); err != nil {
		s.logger.Error().Err(err).Str("metric_type", metricType).Msg("failed to persist metric sample")
		return err
	}

	return nil
}

// scrubMetadata strips markup from string values and masks keys that look like
// credentials before the map reaches storage.
func (s *recorderService) scrubMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	scrubbed := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			scrubbed[key] = "***"
			continue
		}
		if text, ok := value.(string); ok {
			scrubbed[key] = s.sanitizer.Sanitize(text)
			continue
		}
		scrubbed[key] = value
	}

	return scrubbed
}

// dayOf truncates a local timestamp to its calendar day. The date column is
// stored as a plain date, so the zone is normalised to UTC midnight.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
