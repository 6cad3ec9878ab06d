package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

const dashboardWindowDays = 7

// StatsService serves the read side of the analytics pipeline.
type StatsService interface {
	BuildingStats(ctx context.Context, query dto.StatsQuery) (dto.BuildingStatsResponse, error)
	EventStats(ctx context.Context, query dto.StatsQuery) (dto.EventStatsResponse, error)
	PeakHours(ctx context.Context, query dto.StatsQuery, limit int) (dto.PeakHoursResponse, error)
	Dashboard(ctx context.Context) (dto.DashboardResponse, error)
}

type statsService struct {
	buildingAnalytics repository.BuildingAnalyticsRepository
	eventAnalytics    repository.EventAnalyticsRepository
	activities        repository.ActivityLogRepository
	cache             *redis.Client
	cacheTTL          time.Duration
	location          *time.Location
	logger            zerolog.Logger
	now               func() time.Time
}

// NewStatsService constructs the analytics read service. cache may be nil;
// the dashboard then recomputes on every call.
func NewStatsService(
	buildingAnalytics repository.BuildingAnalyticsRepository,
	eventAnalytics repository.EventAnalyticsRepository,
	activities repository.ActivityLogRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	loc *time.Location,
	logger zerolog.Logger,
) StatsService {
	return &statsService{
		buildingAnalytics: buildingAnalytics,
		eventAnalytics:    eventAnalytics,
		activities:        activities,
		cache:             cache,
		cacheTTL:          cacheTTL,
		location:          loc,
		logger:            logger.With().Str("component", "stats_service").Logger(),
		now:               time.Now,
	}
}

func (s *statsService) BuildingStats(ctx context.Context, query dto.StatsQuery) (dto.BuildingStatsResponse, error) {
	rows, err := s.buildingAnalytics.Stats(ctx, repository.BuildingStatsFilter{
		StartDate:  query.StartDate,
		EndDate:    query.EndDate,
		BuildingID: query.BuildingID,
	})
	if err != nil {
		return dto.BuildingStatsResponse{}, err
	}

	if rows == nil {
		rows = []repository.BuildingStatRow{}
	}

	return dto.BuildingStatsResponse{Items: rows, GeneratedAt: s.now()}, nil
}

func (s *statsService) EventStats(ctx context.Context, query dto.StatsQuery) (dto.EventStatsResponse, error) {
	rows, err := s.eventAnalytics.Stats(ctx, repository.EventStatsFilter{
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		Status:    query.Status,
	})
	if err != nil {
		return dto.EventStatsResponse{}, err
	}

	if rows == nil {
		rows = []repository.EventStatRow{}
	}

	return dto.EventStatsResponse{Items: rows, GeneratedAt: s.now()}, nil
}

// PeakHours reports the most recent building-days with their hour buckets
// sorted ascending and labelled "HH:00".
func (s *statsService) PeakHours(ctx context.Context, query dto.StatsQuery, limit int) (dto.PeakHoursResponse, error) {
	rows, err := s.buildingAnalytics.ListRecent(ctx, repository.PeakHoursFilter{
		StartDate:  query.StartDate,
		EndDate:    query.EndDate,
		BuildingID: query.BuildingID,
		Limit:      limit,
	})
	if err != nil {
		return dto.PeakHoursResponse{}, err
	}

	items := make([]dto.BuildingPeakHoursEntry, 0, len(rows))
	for _, row := range rows {
		buckets, err := s.buildingAnalytics.PeakHoursForDay(ctx, row.BuildingID, row.Date)
		if err != nil {
			return dto.PeakHoursResponse{}, err
		}

		hours := make([]dto.PeakHourEntry, 0, len(buckets))
		for _, bucket := range buckets {
			hours = append(hours, dto.PeakHourEntry{
				Hour:  bucket.Hour,
				Label: fmt.Sprintf("%02d:00", bucket.Hour),
				Count: bucket.Count,
			})
		}

		items = append(items, dto.BuildingPeakHoursEntry{
			BuildingID:   row.BuildingID,
			BuildingName: row.BuildingName,
			Date:         row.Date,
			ViewCount:    row.ViewCount,
			PeakHours:    hours,
		})
	}

	return dto.PeakHoursResponse{Items: items, GeneratedAt: s.now()}, nil
}

func (s *statsService) Dashboard(ctx context.Context) (dto.DashboardResponse, error) {
	const cacheKey = "analytics:dashboard"
	tracer := otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/stats")
	ctx, span := tracer.Start(ctx, "stats.dashboard")
	span.SetAttributes(attribute.String("stats.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("stats.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	windowStart := dayOf(s.now().In(s.location).AddDate(0, 0, -dashboardWindowDays))

	activity, err := s.activities.CountByAction(ctx, repository.ActivityLogFilter{StartDate: &windowStart})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "activity_counts_failed")
		return dto.DashboardResponse{}, err
	}

	buildings, err := s.buildingAnalytics.Stats(ctx, repository.BuildingStatsFilter{StartDate: &windowStart})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "building_stats_failed")
		return dto.DashboardResponse{}, err
	}

	events, err := s.eventAnalytics.Stats(ctx, repository.EventStatsFilter{StartDate: &windowStart})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event_stats_failed")
		return dto.DashboardResponse{}, err
	}

	if activity == nil {
		activity = []repository.ActionCount{}
	}
	if buildings == nil {
		buildings = []repository.BuildingStatRow{}
	}
	if events == nil {
		events = []repository.EventStatRow{}
	}

	response := dto.DashboardResponse{
		ActivityByAction: activity,
		TopBuildings:     buildings,
		TopEvents:        events,
		WindowDays:       dashboardWindowDays,
		GeneratedAt:      s.now(),
		CacheHit:         false,
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}
