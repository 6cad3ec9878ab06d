package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
	"github.com/noah-isme/campus-go-api/pkg/ml"
)

// Saturation target names accepted on the prediction surface.
const (
	SaturationTargetBuilding = "building"
	SaturationTargetEvent    = "event"
)

// MLClient is the prediction boundary consumed by the service. Satisfied by
// *ml.Client.
type MLClient interface {
	PredictAttendance(ctx context.Context, features ml.AttendanceFeatures) (ml.Prediction, error)
	PredictMobility(ctx context.Context, features ml.MobilityFeatures) (ml.Prediction, error)
	PredictSaturation(ctx context.Context, features ml.SaturationFeatures) (ml.SaturationPrediction, error)
	Health(ctx context.Context) ml.HealthStatus
}

// PredictionService assembles feature vectors from stored analytics and turns
// them into forecasts.
type PredictionService interface {
	PredictAttendance(ctx context.Context, eventID uint) (dto.AttendancePredictionResponse, error)
	PredictAttendanceBatch(ctx context.Context, req dto.BatchAttendanceRequest) (dto.BatchAttendanceResponse, error)
	PredictMobility(ctx context.Context, buildingID uint) (dto.MobilityPredictionResponse, error)
	PredictSaturation(ctx context.Context, targetType string, targetID uint) (dto.SaturationPredictionResponse, error)
	MLHealth(ctx context.Context) ml.HealthStatus
}

type predictionService struct {
	events            repository.EventRepository
	buildings         repository.BuildingRepository
	eventAnalytics    repository.EventAnalyticsRepository
	buildingAnalytics repository.BuildingAnalyticsRepository
	client            MLClient
	location          *time.Location
	logger            zerolog.Logger
	now               func() time.Time
}

// NewPredictionService constructs the prediction service.
func NewPredictionService(
	events repository.EventRepository,
	buildings repository.BuildingRepository,
	eventAnalytics repository.EventAnalyticsRepository,
	buildingAnalytics repository.BuildingAnalyticsRepository,
	client MLClient,
	loc *time.Location,
	logger zerolog.Logger,
) PredictionService {
	return &predictionService{
		events:            events,
		buildings:         buildings,
		eventAnalytics:    eventAnalytics,
		buildingAnalytics: buildingAnalytics,
		client:            client,
		location:          loc,
		logger:            logger.With().Str("component", "prediction_service").Logger(),
		now:               time.Now,
	}
}

func (s *predictionService) PredictAttendance(ctx context.Context, eventID uint) (dto.AttendancePredictionResponse, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AttendancePredictionResponse{}, ErrNotFound
	}
	if err != nil {
		return dto.AttendancePredictionResponse{}, err
	}

	today := dayOf(s.now().In(s.location))
	row, err := s.eventAnalytics.FindByDay(ctx, eventID, today)
	if err != nil {
		return dto.AttendancePredictionResponse{}, err
	}

	features := assembleAttendanceFeatures(event, row, s.location)
	prediction, err := s.client.PredictAttendance(ctx, features)
	if err != nil {
		return dto.AttendancePredictionResponse{}, err
	}

	if row != nil {
		if err := s.eventAnalytics.SetAttendancePrediction(ctx, row.ID, prediction.Prediction); err != nil {
			s.logger.Warn().Err(err).Uint("event_id", eventID).Msg("failed to write back attendance prediction")
		}
	}

	return dto.AttendancePredictionResponse{
		EventID:      event.ID,
		EventTitle:   event.Title,
		Date:         today,
		Prediction:   prediction.Prediction,
		Confidence:   prediction.Confidence,
		ModelType:    prediction.ModelType,
		FeaturesUsed: prediction.FeaturesUsed,
		Features:     features,
	}, nil
}

// PredictAttendanceBatch scores every listed event. Missing events and
// per-event scoring failures land in the errors list; the bundle itself only
// fails on invalid input.
func (s *predictionService) PredictAttendanceBatch(ctx context.Context, req dto.BatchAttendanceRequest) (dto.BatchAttendanceResponse, error) {
	if len(req.EventIDs) == 0 {
		return dto.BatchAttendanceResponse{}, validationErrorf("event ids are required")
	}

	response := dto.BatchAttendanceResponse{
		Predictions: []dto.AttendancePredictionResponse{},
		Errors:      []dto.BatchPredictionError{},
	}

	for _, eventID := range req.EventIDs {
		prediction, err := s.PredictAttendance(ctx, eventID)
		if err != nil {
			response.Errors = append(response.Errors, dto.BatchPredictionError{
				EventID: eventID,
				Error:   err.Error(),
			})
			continue
		}
		response.Predictions = append(response.Predictions, prediction)
	}

	return response, nil
}

func (s *predictionService) PredictMobility(ctx context.Context, buildingID uint) (dto.MobilityPredictionResponse, error) {
	building, err := s.buildings.GetByID(ctx, buildingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.MobilityPredictionResponse{}, ErrNotFound
	}
	if err != nil {
		return dto.MobilityPredictionResponse{}, err
	}

	local := s.now().In(s.location)
	today := dayOf(local)

	row, err := s.buildingAnalytics.FindByDay(ctx, buildingID, today)
	if err != nil {
		return dto.MobilityPredictionResponse{}, err
	}

	buckets, err := s.buildingAnalytics.PeakHoursForDay(ctx, buildingID, today)
	if err != nil {
		return dto.MobilityPredictionResponse{}, err
	}

	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	eventsCount, err := s.events.CountScheduledAt(ctx, buildingID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return dto.MobilityPredictionResponse{}, err
	}

	features := assembleMobilityFeatures(row, buckets, eventsCount, local)
	prediction, err := s.client.PredictMobility(ctx, features)
	if err != nil {
		return dto.MobilityPredictionResponse{}, err
	}

	return dto.MobilityPredictionResponse{
		BuildingID:   building.ID,
		BuildingName: building.Name,
		Date:         today,
		Prediction:   prediction.Prediction,
		Confidence:   prediction.Confidence,
		ModelType:    prediction.ModelType,
		FeaturesUsed: prediction.FeaturesUsed,
		Features:     features,
	}, nil
}

func (s *predictionService) PredictSaturation(ctx context.Context, targetType string, targetID uint) (dto.SaturationPredictionResponse, error) {
	local := s.now().In(s.location)
	today := dayOf(local)

	var features ml.SaturationFeatures
	var targetName string

	switch strings.ToLower(strings.TrimSpace(targetType)) {
	case SaturationTargetBuilding:
		building, err := s.buildings.GetByID(ctx, targetID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SaturationPredictionResponse{}, ErrNotFound
		}
		if err != nil {
			return dto.SaturationPredictionResponse{}, err
		}
		targetName = building.Name

		row, err := s.buildingAnalytics.FindByDay(ctx, targetID, today)
		if err != nil {
			return dto.SaturationPredictionResponse{}, err
		}
		buckets, err := s.buildingAnalytics.PeakHoursForDay(ctx, targetID, today)
		if err != nil {
			return dto.SaturationPredictionResponse{}, err
		}
		features = assembleBuildingSaturationFeatures(row, buckets, local)

	case SaturationTargetEvent:
		event, err := s.events.GetByID(ctx, targetID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SaturationPredictionResponse{}, ErrNotFound
		}
		if err != nil {
			return dto.SaturationPredictionResponse{}, err
		}
		targetName = event.Title

		row, err := s.eventAnalytics.FindByDay(ctx, targetID, today)
		if err != nil {
			return dto.SaturationPredictionResponse{}, err
		}
		features = assembleEventSaturationFeatures(row, local)

	default:
		return dto.SaturationPredictionResponse{}, validationErrorf("unknown saturation target %q", targetType)
	}

	prediction, err := s.client.PredictSaturation(ctx, features)
	if err != nil {
		return dto.SaturationPredictionResponse{}, err
	}

	return dto.SaturationPredictionResponse{
		TargetType:      strings.ToLower(strings.TrimSpace(targetType)),
		TargetID:        targetID,
		TargetName:      targetName,
		Date:            today,
		SaturationLevel: prediction.SaturationLevel,
		SaturationLabel: prediction.SaturationLabel,
		Confidence:      prediction.Confidence,
		ModelType:       prediction.ModelType,
		FeaturesUsed:    prediction.FeaturesUsed,
		Features:        features,
	}, nil
}

func (s *predictionService) MLHealth(ctx context.Context) ml.HealthStatus {
	return s.client.Health(ctx)
}

// assembleAttendanceFeatures builds the attendance feature vector from the
// event and its analytics row for today. A missing row contributes zeros.
func assembleAttendanceFeatures(event models.Event, row *models.EventDailyAnalytics, loc *time.Location) ml.AttendanceFeatures {
	start := event.DateTime.In(loc)
	features := ml.AttendanceFeatures{
		DayOfWeek:     int(start.Weekday()),
		Hour:          start.Hour(),
		CategoryCount: len(event.Categories),
		DateTime:      start.Format(time.RFC3339),
	}

	if row != nil {
		features.ViewCount = row.ViewCount
		features.UniqueVisitors = row.UniqueVisitors
		features.PopularityScore = row.PopularityScore
	}

	return features
}

func assembleMobilityFeatures(row *models.BuildingDailyAnalytics, buckets []models.BuildingPeakHour, eventsCount int64, local time.Time) ml.MobilityFeatures {
	features := ml.MobilityFeatures{
		DayOfWeek:   int(local.Weekday()),
		Hour:        local.Hour(),
		PeakHour:    firstMaxHour(buckets),
		EventsCount: eventsCount,
		DateTime:    local.Format(time.RFC3339),
	}

	if row != nil {
		features.ViewCount = row.ViewCount
		features.UniqueVisitors = row.UniqueVisitors
		features.AverageViewDuration = row.AverageViewDuration
	}

	return features
}

func assembleBuildingSaturationFeatures(row *models.BuildingDailyAnalytics, buckets []models.BuildingPeakHour, local time.Time) ml.SaturationFeatures {
	var peakVisits int64
	for _, bucket := range buckets {
		peakVisits += bucket.Count
	}

	features := ml.SaturationFeatures{
		DayOfWeek:  int(local.Weekday()),
		Hour:       local.Hour(),
		PeakVisits: peakVisits,
		Type:       ml.TargetBuilding,
		DateTime:   local.Format(time.RFC3339),
	}

	if row != nil {
		features.ViewCount = row.ViewCount
		features.UniqueVisitors = row.UniqueVisitors
		features.AverageViewDuration = row.AverageViewDuration
	}

	return features
}

func assembleEventSaturationFeatures(row *models.EventDailyAnalytics, local time.Time) ml.SaturationFeatures {
	features := ml.SaturationFeatures{
		DayOfWeek: int(local.Weekday()),
		Hour:      local.Hour(),
		Type:      ml.TargetEvent,
		DateTime:  local.Format(time.RFC3339),
	}

	if row != nil {
		features.ViewCount = row.ViewCount
		features.UniqueVisitors = row.UniqueVisitors
		features.PopularityScore = row.PopularityScore
	}

	return features
}

// firstMaxHour returns the hour with the highest bucket count. Ties keep the
// earliest hour; no buckets yield zero.
func firstMaxHour(buckets []models.BuildingPeakHour) int {
	best := 0
	var bestCount int64
	for _, bucket := range buckets {
		if bucket.Count > bestCount {
			best = bucket.Hour
			bestCount = bucket.Count
		}
	}
	return best
}
