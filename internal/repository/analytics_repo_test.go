package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/database"
	"github.com/noah-isme/campus-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// A single pooled connection keeps the shared in-memory database alive and
	// serialises writes, so concurrent callers still exercise the upserts.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func day(offset int) time.Time {
	base := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestBuildingAnalyticsConcurrentIncrementsLoseNothing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBuildingAnalyticsRepository(db)

	const callers = 20
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.IncrementView(context.Background(), BuildingViewUpdate{
				BuildingID:    1,
				BuildingName:  "Biblioteca Central",
				Date:          day(0),
				DayOfWeek:     "martes",
				Hour:          10,
				Authenticated: true,
				UserRole:      models.RoleEstudiante,
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	row, err := repo.FindByDay(context.Background(), 1, day(0))
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, int64(callers), row.ViewCount)
	require.Equal(t, int64(callers), row.UniqueVisitors)
	require.Equal(t, int64(callers), row.VisitorsEstudiante)
	require.Equal(t, int64(0), row.VisitorsProfesor)

	buckets, err := repo.PeakHoursForDay(context.Background(), 1, day(0))
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	require.Equal(t, 10, buckets[0].Hour)
	require.Equal(t, int64(callers), buckets[0].Count)
}

func TestBuildingAnalyticsIncrementalMean(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBuildingAnalyticsRepository(db)

	for _, duration := range []float64{30, 60, 90} {
		d := duration
		err := repo.IncrementView(context.Background(), BuildingViewUpdate{
			BuildingID:          3,
			BuildingName:        "Edificio de Ingeniería",
			Date:                day(0),
			DayOfWeek:           "martes",
			Hour:                9,
			ViewDurationSeconds: &d,
		})
		require.NoError(t, err)
	}

	row, err := repo.FindByDay(context.Background(), 3, day(0))
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, int64(3), row.ViewCount)
	require.InDelta(t, 60.0, row.AverageViewDuration, 1e-9)
}

func TestBuildingAnalyticsAnonymousViewsSkipVisitorCounters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBuildingAnalyticsRepository(db)

	for i := 0; i < 3; i++ {
		err := repo.IncrementView(context.Background(), BuildingViewUpdate{
			BuildingID:   2,
			BuildingName: "Rectorado",
			Date:         day(0),
			DayOfWeek:    "martes",
			Hour:         14,
		})
		require.NoError(t, err)
	}

	row, err := repo.FindByDay(context.Background(), 2, day(0))
	require.NoError(t, err)
	require.Equal(t, int64(3), row.ViewCount)
	require.Equal(t, int64(0), row.UniqueVisitors)
}

func TestBuildingAnalyticsPeakBucketsAccumulatePerHour(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBuildingAnalyticsRepository(db)

	hours := []int{8, 8, 8, 14, 14, 20}
	for _, hour := range hours {
		err := repo.IncrementView(context.Background(), BuildingViewUpdate{
			BuildingID:   5,
			BuildingName: "Comedor",
			Date:         day(0),
			DayOfWeek:    "martes",
			Hour:         hour,
		})
		require.NoError(t, err)
	}

	buckets, err := repo.PeakHoursForDay(context.Background(), 5, day(0))
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	require.Equal(t, 8, buckets[0].Hour)
	require.Equal(t, int64(3), buckets[0].Count)
	require.Equal(t, 14, buckets[1].Hour)
	require.Equal(t, int64(2), buckets[1].Count)
	require.Equal(t, 20, buckets[2].Hour)
	require.Equal(t, int64(1), buckets[2].Count)
}

func TestBuildingAnalyticsFindByDayMissingRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBuildingAnalyticsRepository(db)

	row, err := repo.FindByDay(context.Background(), 99, day(0))
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestBuildingAnalyticsDeleteOlderThanIsStrict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBuildingAnalyticsRepository(db)

	for _, offset := range []int{-91, -90, -89} {
		err := repo.IncrementView(context.Background(), BuildingViewUpdate{
			BuildingID:   7,
			BuildingName: "Auditorio",
			Date:         day(offset),
			DayOfWeek:    "lunes",
			Hour:         11,
		})
		require.NoError(t, err)
	}

	cutoff := day(-90)
	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	survivor, err := repo.FindByDay(context.Background(), 7, day(-90))
	require.NoError(t, err)
	require.NotNil(t, survivor, "row exactly at the cutoff must survive")

	gone, err := repo.FindByDay(context.Background(), 7, day(-91))
	require.NoError(t, err)
	require.Nil(t, gone)

	buckets, err := repo.PeakHoursForDay(context.Background(), 7, day(-91))
	require.NoError(t, err)
	require.Empty(t, buckets, "peak buckets must be pruned with their rows")
}

func TestEventAnalyticsIncrementFixesFirstSightAttributes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventAnalyticsRepository(db)

	buildingID := uint(4)
	first := EventViewUpdate{
		EventID:       11,
		EventTitle:    "Semana de la Ciencia",
		Date:          day(0),
		Authenticated: true,
		BuildingID:    &buildingID,
		Categories:    []string{"charla", "taller"},
		Status:        models.EventStatusScheduled,
	}
	require.NoError(t, repo.IncrementView(context.Background(), first))

	second := first
	second.Authenticated = false
	second.EventTitle = "renamed"
	second.Status = models.EventStatusOngoing
	require.NoError(t, repo.IncrementView(context.Background(), second))

	row, err := repo.FindByDay(context.Background(), 11, day(0))
	require.NoError(t, err)
	require.Equal(t, int64(2), row.ViewCount)
	require.Equal(t, int64(1), row.UniqueVisitors)
	require.Equal(t, "Semana de la Ciencia", row.EventTitle, "title is fixed on first sight of the day")
	require.Equal(t, models.EventStatusOngoing, row.Status, "status tracks the latest view")
}

func TestEventAnalyticsPopularityWindowAndBroadcast(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventAnalyticsRepository(db)

	seed := func(eventID uint, offset int, views, visitors int) {
		for i := 0; i < views; i++ {
			update := EventViewUpdate{
				EventID:    eventID,
				EventTitle: fmt.Sprintf("Evento %d", eventID),
				Date:       day(offset),
				Status:     models.EventStatusScheduled,
			}
			update.Authenticated = i < visitors
			require.NoError(t, repo.IncrementView(context.Background(), update))
		}
	}

	// Event 1: 5 older views (2 visitors) plus 3 today views (1 visitor).
	seed(1, -3, 5, 2)
	seed(1, 0, 3, 1)
	// Event 2: outside the window.
	seed(2, -10, 50, 50)
	// Event 3: views dated yesterday only.
	seed(3, -1, 5, 0)

	// Recency cutoff as computed by an 02:00 run: 02:00 yesterday. The
	// yesterday-dated rows sit at midnight, before the cutoff, so they must
	// not count as recent.
	recentSince := day(-1).Add(2 * time.Hour)
	rows, err := repo.PopularityWindow(context.Background(), day(-7), recentSince)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byEvent := map[uint]EventPopularityRow{}
	for _, row := range rows {
		byEvent[row.EventID] = row
	}
	require.Equal(t, int64(8), byEvent[1].TotalViews)
	require.Equal(t, int64(3), byEvent[1].UniqueVisitors)
	require.Equal(t, int64(3), byEvent[1].RecentViews)
	require.Equal(t, int64(5), byEvent[3].TotalViews)
	require.Zero(t, byEvent[3].RecentViews, "yesterday's views predate the cutoff")

	require.NoError(t, repo.BroadcastPopularity(context.Background(), 1, 23))

	older, err := repo.FindByDay(context.Background(), 1, day(-3))
	require.NoError(t, err)
	require.Equal(t, int64(23), older.PopularityScore, "score reaches rows outside the window too")

	recent, err := repo.FindByDay(context.Background(), 1, day(0))
	require.NoError(t, err)
	require.Equal(t, int64(23), recent.PopularityScore)
}

func TestEventAnalyticsSetAttendancePrediction(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventAnalyticsRepository(db)

	require.NoError(t, repo.IncrementView(context.Background(), EventViewUpdate{
		EventID:    21,
		EventTitle: "Feria",
		Date:       day(0),
		Status:     models.EventStatusScheduled,
	}))

	row, err := repo.FindByDay(context.Background(), 21, day(0))
	require.NoError(t, err)
	require.NoError(t, repo.SetAttendancePrediction(context.Background(), row.ID, 42.5))

	row, err = repo.FindByDay(context.Background(), 21, day(0))
	require.NoError(t, err)
	require.InDelta(t, 42.5, row.AttendancePrediction, 1e-9)
}

func TestBuildingStatsGroupsAndOrders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBuildingAnalyticsRepository(db)

	for i := 0; i < 4; i++ {
		require.NoError(t, repo.IncrementView(context.Background(), BuildingViewUpdate{
			BuildingID: 1, BuildingName: "Biblioteca", Date: day(-1), DayOfWeek: "lunes", Hour: 9,
		}))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.IncrementView(context.Background(), BuildingViewUpdate{
			BuildingID: 1, BuildingName: "Biblioteca", Date: day(0), DayOfWeek: "martes", Hour: 9,
		}))
	}
	require.NoError(t, repo.IncrementView(context.Background(), BuildingViewUpdate{
		BuildingID: 2, BuildingName: "Rectorado", Date: day(0), DayOfWeek: "martes", Hour: 9,
	}))

	rows, err := repo.Stats(context.Background(), BuildingStatsFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, uint(1), rows[0].BuildingID, "most viewed first")
	require.Equal(t, int64(6), rows[0].TotalViews)
	require.Equal(t, int64(1), rows[1].TotalViews)

	start := day(0)
	rows, err = repo.Stats(context.Background(), BuildingStatsFilter{StartDate: &start})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].TotalViews)
}
