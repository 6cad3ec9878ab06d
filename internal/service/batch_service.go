package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/campus-go-api/internal/repository"
)

// BatchCompletedSubject is published after every successful pipeline run.
const BatchCompletedSubject = "campus.batch.completed"

const (
	popularityWindowDays = 7
	popularityTopN       = 10

	weightViews          = 1
	weightUniqueVisitors = 2
	weightRecentViews    = 3
)

// HourCount is one peak-hour bucket inside a consolidation row.
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// BuildingConsolidationRow summarises one building's previous day.
type BuildingConsolidationRow struct {
	BuildingID          uint        `json:"building_id"`
	BuildingName        string      `json:"building_name"`
	TotalViews          int64       `json:"total_views"`
	TotalUniqueVisitors int64       `json:"total_unique_visitors"`
	AvgViewDuration     float64     `json:"avg_view_duration"`
	PeakHours           []HourCount `json:"peak_hours"`
}

// ConsolidationResult is the outcome of the daily building consolidation step.
type ConsolidationResult struct {
	Date      time.Time                  `json:"date"`
	Processed int                        `json:"processed"`
	Buildings []BuildingConsolidationRow `json:"buildings"`
}

// PopularityEntry is one scored event of the popularity step.
type PopularityEntry struct {
	EventID        uint   `json:"event_id"`
	EventTitle     string `json:"event_title"`
	TotalViews     int64  `json:"total_views"`
	UniqueVisitors int64  `json:"unique_visitors"`
	RecentViews    int64  `json:"recent_views"`
	Score          int64  `json:"score"`
}

// PopularityResult is the outcome of the event popularity step.
type PopularityResult struct {
	Processed int               `json:"processed"`
	Top       []PopularityEntry `json:"top"`
}

// CleanupResult reports per-collection prune counts.
type CleanupResult struct {
	Cutoff            time.Time `json:"cutoff"`
	BuildingAnalytics int64     `json:"building_analytics"`
	EventAnalytics    int64     `json:"event_analytics"`
	ActivityLogs      int64     `json:"activity_logs"`
	SystemMetrics     int64     `json:"system_metrics"`
}

// BatchResult bundles one full pipeline run. Cleanup is nil on days the
// retention step did not run.
type BatchResult struct {
	RunID             string              `json:"run_id"`
	BuildingAnalytics ConsolidationResult `json:"building_analytics"`
	EventPopularity   PopularityResult    `json:"event_popularity"`
	Cleanup           *CleanupResult      `json:"cleanup,omitempty"`
	Timestamp         time.Time           `json:"timestamp"`
}

// BatchService runs the consolidation, popularity and retention steps of the
// analytics pipeline. Steps are individually callable and idempotent.
type BatchService interface {
	ConsolidateBuildingAnalytics(ctx context.Context) (ConsolidationResult, error)
	ProcessEventPopularity(ctx context.Context) (PopularityResult, error)
	CleanOldData(ctx context.Context, daysToKeep int) (CleanupResult, error)
	RunBatchProcessing(ctx context.Context) (BatchResult, error)
}

type batchService struct {
	buildingAnalytics repository.BuildingAnalyticsRepository
	eventAnalytics    repository.EventAnalyticsRepository
	activities        repository.ActivityLogRepository
	metrics           repository.SystemMetricRepository
	nats              *nats.Conn
	location          *time.Location
	retentionDays     int
	logger            zerolog.Logger
	now               func() time.Time
}

// NewBatchService constructs the batch engine. natsConn may be nil; publishing
// is best effort.
func NewBatchService(
	buildingAnalytics repository.BuildingAnalyticsRepository,
	eventAnalytics repository.EventAnalyticsRepository,
	activities repository.ActivityLogRepository,
	metrics repository.SystemMetricRepository,
	natsConn *nats.Conn,
	loc *time.Location,
	retentionDays int,
	logger zerolog.Logger,
) BatchService {
	if retentionDays <= 0 {
		retentionDays = 90
	}

	return &batchService{
		buildingAnalytics: buildingAnalytics,
		eventAnalytics:    eventAnalytics,
		activities:        activities,
		metrics:           metrics,
		nats:              natsConn,
		location:          loc,
		retentionDays:     retentionDays,
		logger:            logger.With().Str("component", "batch_service").Logger(),
		now:               time.Now,
	}
}

// ConsolidateBuildingAnalytics summarises yesterday's building rows. The step
// reads and reports; counter rows stay untouched, so reruns are harmless.
func (s *batchService) ConsolidateBuildingAnalytics(ctx context.Context) (ConsolidationResult, error) {
	local := s.now().In(s.location)
	yesterday := dayOf(local.AddDate(0, 0, -1))

	rows, err := s.buildingAnalytics.ListByDate(ctx, yesterday)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load yesterday's building analytics")
		return ConsolidationResult{}, err
	}

	buckets, err := s.buildingAnalytics.ListPeakHoursByDate(ctx, yesterday)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load yesterday's peak hour buckets")
		return ConsolidationResult{}, err
	}

	peaksByBuilding := map[uint][]HourCount{}
	for _, bucket := range buckets {
		peaksByBuilding[bucket.BuildingID] = append(peaksByBuilding[bucket.BuildingID], HourCount{
			Hour:  bucket.Hour,
			Count: bucket.Count,
		})
	}

	result := ConsolidationResult{Date: yesterday, Processed: len(rows)}
	for _, row := range rows {
		peaks := peaksByBuilding[row.BuildingID]
		if peaks == nil {
			peaks = []HourCount{}
		}
		result.Buildings = append(result.Buildings, BuildingConsolidationRow{
			BuildingID:          row.BuildingID,
			BuildingName:        row.BuildingName,
			TotalViews:          row.ViewCount,
			TotalUniqueVisitors: row.UniqueVisitors,
			AvgViewDuration:     row.AverageViewDuration,
			PeakHours:           peaks,
		})
	}

	s.logger.Info().
		Time("date", yesterday).
		Int("buildings", result.Processed).
		Msg("building analytics consolidated")

	return result, nil
}

// ProcessEventPopularity recomputes popularity scores over the trailing
// seven-day window and broadcasts the top scores onto every analytics row of
// each scored event. Scores are recomputed from scratch, so reruns converge.
func (s *batchService) ProcessEventPopularity(ctx context.Context) (PopularityResult, error) {
	now := s.now().In(s.location)
	since := dayOf(now.AddDate(0, 0, -popularityWindowDays))
	// The recency bonus uses the raw instant, not the day boundary. With
	// day-truncated row dates an early-morning run must not count all of
	// yesterday's views as recent.
	recentSince := now.Add(-24 * time.Hour)

	rows, err := s.eventAnalytics.PopularityWindow(ctx, since, recentSince)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load popularity window")
		return PopularityResult{}, err
	}

	scored := make([]PopularityEntry, 0, len(rows))
	for _, row := range rows {
		scored = append(scored, PopularityEntry{
			EventID:        row.EventID,
			EventTitle:     row.EventTitle,
			TotalViews:     row.TotalViews,
			UniqueVisitors: row.UniqueVisitors,
			RecentViews:    row.RecentViews,
			Score:          row.TotalViews*weightViews + row.UniqueVisitors*weightUniqueVisitors + row.RecentViews*weightRecentViews,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > popularityTopN {
		scored = scored[:popularityTopN]
	}

	for _, entry := range scored {
		if err := s.eventAnalytics.BroadcastPopularity(ctx, entry.EventID, entry.Score); err != nil {
			s.logger.Error().Err(err).Uint("event_id", entry.EventID).Msg("failed to broadcast popularity score")
			return PopularityResult{}, err
		}
	}

	s.logger.Info().
		Int("window_events", len(rows)).
		Int("scored", len(scored)).
		Msg("event popularity processed")

	return PopularityResult{Processed: len(rows), Top: scored}, nil
}

// CleanOldData prunes rows strictly older than the cutoff day. A row exactly
// daysToKeep days old survives.
func (s *batchService) CleanOldData(ctx context.Context, daysToKeep int) (CleanupResult, error) {
	if daysToKeep <= 0 {
		daysToKeep = s.retentionDays
	}

	local := s.now().In(s.location)
	cutoff := dayOf(local.AddDate(0, 0, -daysToKeep))
	result := CleanupResult{Cutoff: cutoff}

	var err error
	if result.BuildingAnalytics, err = s.buildingAnalytics.DeleteOlderThan(ctx, cutoff); err != nil {
		s.logger.Error().Err(err).Msg("failed to prune building analytics")
		return CleanupResult{}, err
	}
	if result.EventAnalytics, err = s.eventAnalytics.DeleteOlderThan(ctx, cutoff); err != nil {
		s.logger.Error().Err(err).Msg("failed to prune event analytics")
		return CleanupResult{}, err
	}
	if result.ActivityLogs, err = s.activities.DeleteOlderThan(ctx, cutoff); err != nil {
		s.logger.Error().Err(err).Msg("failed to prune activity logs")
		return CleanupResult{}, err
	}
	if result.SystemMetrics, err = s.metrics.DeleteOlderThan(ctx, cutoff); err != nil {
		s.logger.Error().Err(err).Msg("failed to prune system metrics")
		return CleanupResult{}, err
	}

	s.logger.Info().
		Time("cutoff", cutoff).
		Int64("building_analytics", result.BuildingAnalytics).
		Int64("event_analytics", result.EventAnalytics).
		Int64("activity_logs", result.ActivityLogs).
		Int64("system_metrics", result.SystemMetrics).
		Msg("old data pruned")

	return result, nil
}

// RunBatchProcessing executes consolidation, popularity and, on Sundays in the
// analytics timezone, the retention step. The first failing step aborts the
// run.
func (s *batchService) RunBatchProcessing(ctx context.Context) (BatchResult, error) {
	runID := uuid.NewString()
	tracer := otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/batch")
	ctx, span := tracer.Start(ctx, "batch.run")
	span.SetAttributes(attribute.String("batch.run_id", runID))
	defer span.End()

	started := s.now()
	s.logger.Info().Str("run_id", runID).Msg("batch processing started")

	consolidation, err := s.ConsolidateBuildingAnalytics(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "consolidation_failed")
		return BatchResult{}, err
	}

	popularity, err := s.ProcessEventPopularity(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "popularity_failed")
		return BatchResult{}, err
	}

	result := BatchResult{
		RunID:             runID,
		BuildingAnalytics: consolidation,
		EventPopularity:   popularity,
		Timestamp:         s.now(),
	}

	if s.now().In(s.location).Weekday() == time.Sunday {
		cleanup, err := s.CleanOldData(ctx, s.retentionDays)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cleanup_failed")
			return BatchResult{}, err
		}
		result.Cleanup = &cleanup
	}

	span.SetAttributes(
		attribute.Int("batch.buildings", consolidation.Processed),
		attribute.Int("batch.events_scored", len(popularity.Top)),
		attribute.Bool("batch.cleanup_ran", result.Cleanup != nil),
	)

	s.publishCompletion(result)
	s.logger.Info().
		Str("run_id", runID).
		Dur("elapsed", s.now().Sub(started)).
		Msg("batch processing finished")

	return result, nil
}

func (s *batchService) publishCompletion(result BatchResult) {
	if s.nats == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode batch completion event")
		return
	}

	if err := s.nats.Publish(BatchCompletedSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish batch completion event")
	}
}
