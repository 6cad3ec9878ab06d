package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
	"github.com/noah-isme/campus-go-api/pkg/ml"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrFloat(v float64) *float64 {
	return &v
}

func gormNotFound() error {
	return gorm.ErrRecordNotFound
}

type fakeActivityRepo struct {
	entries   []models.ActivityLog
	createErr error
	deleted   int64
}

func (f *fakeActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), f.entries...), int64(len(f.entries)), nil
}

func (f *fakeActivityRepo) CountByAction(ctx context.Context, filter repository.ActivityLogFilter) ([]repository.ActionCount, error) {
	counts := map[string]int64{}
	for _, entry := range f.entries {
		counts[entry.Action]++
	}
	result := make([]repository.ActionCount, 0, len(counts))
	for action, count := range counts {
		result = append(result, repository.ActionCount{Action: action, Count: count})
	}
	return result, nil
}

func (f *fakeActivityRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.deleted, nil
}

type fakeBuildingAnalyticsRepo struct {
	updates      []repository.BuildingViewUpdate
	incrementErr error
	rows         map[string]*models.BuildingDailyAnalytics
	buckets      map[string][]models.BuildingPeakHour
	byDate       []models.BuildingDailyAnalytics
	statRows     []repository.BuildingStatRow
	recent       []models.BuildingDailyAnalytics
	deleted      int64
	deleteErr    error
}

func dayKey(id uint, date time.Time) string {
	return fmt.Sprintf("%d|%s", id, date.Format("2006-01-02"))
}

func (f *fakeBuildingAnalyticsRepo) IncrementView(ctx context.Context, update repository.BuildingViewUpdate) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeBuildingAnalyticsRepo) FindByDay(ctx context.Context, buildingID uint, date time.Time) (*models.BuildingDailyAnalytics, error) {
	return f.rows[dayKey(buildingID, date)], nil
}

func (f *fakeBuildingAnalyticsRepo) PeakHoursForDay(ctx context.Context, buildingID uint, date time.Time) ([]models.BuildingPeakHour, error) {
	return f.buckets[dayKey(buildingID, date)], nil
}

func (f *fakeBuildingAnalyticsRepo) ListByDate(ctx context.Context, date time.Time) ([]models.BuildingDailyAnalytics, error) {
	return f.byDate, nil
}

func (f *fakeBuildingAnalyticsRepo) ListPeakHoursByDate(ctx context.Context, date time.Time) ([]models.BuildingPeakHour, error) {
	var all []models.BuildingPeakHour
	for _, buckets := range f.buckets {
		all = append(all, buckets...)
	}
	return all, nil
}

func (f *fakeBuildingAnalyticsRepo) Stats(ctx context.Context, filter repository.BuildingStatsFilter) ([]repository.BuildingStatRow, error) {
	return f.statRows, nil
}

func (f *fakeBuildingAnalyticsRepo) ListRecent(ctx context.Context, filter repository.PeakHoursFilter) ([]models.BuildingDailyAnalytics, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 13
	}
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeBuildingAnalyticsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.deleted, nil
}

type fakeEventAnalyticsRepo struct {
	updates           []repository.EventViewUpdate
	rows              map[string]*models.EventDailyAnalytics
	windowRows        []repository.EventPopularityRow
	windowErr         error
	windowSince       time.Time
	windowRecentSince time.Time
	broadcasts        map[uint]int64
	predictions       map[uint]float64
	predictionErr     error
	statRows          []repository.EventStatRow
	deleted           int64
}

func (f *fakeEventAnalyticsRepo) IncrementView(ctx context.Context, update repository.EventViewUpdate) error {
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeEventAnalyticsRepo) FindByDay(ctx context.Context, eventID uint, date time.Time) (*models.EventDailyAnalytics, error) {
	return f.rows[dayKey(eventID, date)], nil
}

func (f *fakeEventAnalyticsRepo) PopularityWindow(ctx context.Context, since, recentSince time.Time) ([]repository.EventPopularityRow, error) {
	f.windowSince = since
	f.windowRecentSince = recentSince
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	return f.windowRows, nil
}

func (f *fakeEventAnalyticsRepo) BroadcastPopularity(ctx context.Context, eventID uint, score int64) error {
	if f.broadcasts == nil {
		f.broadcasts = map[uint]int64{}
	}
	f.broadcasts[eventID] = score
	return nil
}

func (f *fakeEventAnalyticsRepo) SetAttendancePrediction(ctx context.Context, id uint, prediction float64) error {
	if f.predictionErr != nil {
		return f.predictionErr
	}
	if f.predictions == nil {
		f.predictions = map[uint]float64{}
	}
	f.predictions[id] = prediction
	return nil
}

func (f *fakeEventAnalyticsRepo) Stats(ctx context.Context, filter repository.EventStatsFilter) ([]repository.EventStatRow, error) {
	return f.statRows, nil
}

func (f *fakeEventAnalyticsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.deleted, nil
}

type fakeMetricRepo struct {
	samples []models.SystemMetric
	deleted int64
}

func (f *fakeMetricRepo) Create(ctx context.Context, sample *models.SystemMetric) error {
	sample.ID = uint(len(f.samples) + 1)
	f.samples = append(f.samples, *sample)
	return nil
}

func (f *fakeMetricRepo) ListByType(ctx context.Context, metricType string, since time.Time, limit int) ([]models.SystemMetric, error) {
	return f.samples, nil
}

func (f *fakeMetricRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.deleted, nil
}

type fakeEventRepo struct {
	events    map[uint]models.Event
	scheduled map[uint]int64
}

func (f *fakeEventRepo) List(ctx context.Context, filter repository.EventFilter) ([]models.Event, int64, error) {
	var all []models.Event
	for _, event := range f.events {
		all = append(all, event)
	}
	return all, int64(len(all)), nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id uint) (models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return models.Event{}, gormNotFound()
	}
	return event, nil
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	if f.events == nil {
		f.events = map[uint]models.Event{}
	}
	event.ID = uint(len(f.events) + 1)
	f.events[event.ID] = *event
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	f.events[event.ID] = *event
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id uint) error {
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) CountScheduledAt(ctx context.Context, buildingID uint, dayStart, dayEnd time.Time) (int64, error) {
	return f.scheduled[buildingID], nil
}

type fakeBuildingRepo struct {
	buildings map[uint]models.Building
}

func (f *fakeBuildingRepo) List(ctx context.Context, filter repository.BuildingFilter) ([]models.Building, int64, error) {
	var all []models.Building
	for _, building := range f.buildings {
		all = append(all, building)
	}
	return all, int64(len(all)), nil
}

func (f *fakeBuildingRepo) GetByID(ctx context.Context, id uint) (models.Building, error) {
	building, ok := f.buildings[id]
	if !ok {
		return models.Building{}, gormNotFound()
	}
	return building, nil
}

func (f *fakeBuildingRepo) Create(ctx context.Context, building *models.Building) error {
	if f.buildings == nil {
		f.buildings = map[uint]models.Building{}
	}
	building.ID = uint(len(f.buildings) + 1)
	f.buildings[building.ID] = *building
	return nil
}

func (f *fakeBuildingRepo) Update(ctx context.Context, building *models.Building) error {
	f.buildings[building.ID] = *building
	return nil
}

func (f *fakeBuildingRepo) Delete(ctx context.Context, id uint) error {
	delete(f.buildings, id)
	return nil
}

type fakeCategoryRepo struct {
	categories map[uint]models.Category
	deleted    []uint
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	var all []models.Category
	for _, category := range f.categories {
		all = append(all, category)
	}
	return all, nil
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if f.categories == nil {
		f.categories = map[uint]models.Category{}
	}
	category.ID = uint(len(f.categories) + 1)
	f.categories[category.ID] = *category
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	delete(f.categories, id)
	return nil
}

type fakeRecorder struct {
	entries       []ActivityEntry
	buildingViews []BuildingViewInput
	eventViews    []EventViewInput
	metricInputs  []SystemMetricInput
	err           error
}

func (f *fakeRecorder) RecordActivity(ctx context.Context, entry ActivityEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeRecorder) RecordBuildingView(ctx context.Context, input BuildingViewInput) error {
	if f.err != nil {
		return f.err
	}
	f.buildingViews = append(f.buildingViews, input)
	return nil
}

func (f *fakeRecorder) RecordEventView(ctx context.Context, input EventViewInput) error {
	if f.err != nil {
		return f.err
	}
	f.eventViews = append(f.eventViews, input)
	return nil
}

func (f *fakeRecorder) RecordSystemMetric(ctx context.Context, input SystemMetricInput) error {
	if f.err != nil {
		return f.err
	}
	f.metricInputs = append(f.metricInputs, input)
	return nil
}

type fakeMLClient struct {
	attendance     ml.Prediction
	attendanceErr  error
	mobility       ml.Prediction
	saturation     ml.SaturationPrediction
	health         ml.HealthStatus
	attendanceSeen []ml.AttendanceFeatures
	mobilitySeen   []ml.MobilityFeatures
	saturationSeen []ml.SaturationFeatures
}

func (f *fakeMLClient) PredictAttendance(ctx context.Context, features ml.AttendanceFeatures) (ml.Prediction, error) {
	f.attendanceSeen = append(f.attendanceSeen, features)
	if f.attendanceErr != nil {
		return ml.Prediction{}, f.attendanceErr
	}
	return f.attendance, nil
}

func (f *fakeMLClient) PredictMobility(ctx context.Context, features ml.MobilityFeatures) (ml.Prediction, error) {
	f.mobilitySeen = append(f.mobilitySeen, features)
	return f.mobility, nil
}

func (f *fakeMLClient) PredictSaturation(ctx context.Context, features ml.SaturationFeatures) (ml.SaturationPrediction, error) {
	f.saturationSeen = append(f.saturationSeen, features)
	return f.saturation, nil
}

func (f *fakeMLClient) Health(ctx context.Context) ml.HealthStatus {
	return f.health
}
