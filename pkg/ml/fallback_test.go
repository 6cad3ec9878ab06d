package ml

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttendanceEstimate(t *testing.T) {
	cases := []struct {
		name     string
		features AttendanceFeatures
		want     int
	}{
		{"baseline midday", AttendanceFeatures{UniqueVisitors: 10, Hour: 12}, 15},
		{"afternoon peak start", AttendanceFeatures{UniqueVisitors: 10, Hour: 14}, 18},
		{"afternoon peak end", AttendanceFeatures{UniqueVisitors: 10, Hour: 18}, 18},
		{"early morning discount", AttendanceFeatures{UniqueVisitors: 10, Hour: 8}, 12},
		{"late night discount", AttendanceFeatures{UniqueVisitors: 10, Hour: 20}, 12},
		{"nine o'clock is baseline", AttendanceFeatures{UniqueVisitors: 10, Hour: 9}, 15},
		{"nineteen is baseline", AttendanceFeatures{UniqueVisitors: 10, Hour: 19}, 15},
		{"no visitors", AttendanceFeatures{UniqueVisitors: 0, Hour: 15}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, AttendanceEstimate(tc.features))
		})
	}
}

func TestMobilityEstimate(t *testing.T) {
	cases := []struct {
		name     string
		features MobilityFeatures
		want     int
	}{
		{"no events midday peak", MobilityFeatures{UniqueVisitors: 10, EventsCount: 0, Hour: 12}, 13},
		{"two events amplify", MobilityFeatures{UniqueVisitors: 10, EventsCount: 2, Hour: 9}, 20},
		{"peak and events stack", MobilityFeatures{UniqueVisitors: 10, EventsCount: 2, Hour: 12}, 26},
		{"early morning discount", MobilityFeatures{UniqueVisitors: 10, EventsCount: 0, Hour: 7}, 7},
		{"late night discount", MobilityFeatures{UniqueVisitors: 10, EventsCount: 0, Hour: 20}, 7},
		{"eight o'clock is baseline", MobilityFeatures{UniqueVisitors: 10, EventsCount: 0, Hour: 8}, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MobilityEstimate(tc.features))
		})
	}
}

func TestSaturationEstimateBuildingThresholds(t *testing.T) {
	cases := []struct {
		features SaturationFeatures
		want     int
	}{
		{SaturationFeatures{Type: TargetBuilding, UniqueVisitors: 200}, SaturationHigh},
		{SaturationFeatures{Type: TargetBuilding, ViewCount: 301}, SaturationHigh},
		{SaturationFeatures{Type: TargetBuilding, UniqueVisitors: 150, ViewCount: 300}, SaturationMedium},
		{SaturationFeatures{Type: TargetBuilding, UniqueVisitors: 101}, SaturationMedium},
		{SaturationFeatures{Type: TargetBuilding, UniqueVisitors: 75}, SaturationLow},
		{SaturationFeatures{Type: TargetBuilding, ViewCount: 101}, SaturationLow},
		{SaturationFeatures{Type: TargetBuilding, UniqueVisitors: 50, ViewCount: 100}, SaturationNormal},
		{SaturationFeatures{Type: TargetBuilding}, SaturationNormal},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("uv=%d_views=%d", tc.features.UniqueVisitors, tc.features.ViewCount), func(t *testing.T) {
			require.Equal(t, tc.want, SaturationEstimate(tc.features))
		})
	}
}

func TestSaturationEstimateEventThresholds(t *testing.T) {
	cases := []struct {
		features SaturationFeatures
		want     int
	}{
		{SaturationFeatures{Type: TargetEvent, PopularityScore: 600}, SaturationHigh},
		{SaturationFeatures{Type: TargetEvent, UniqueVisitors: 101}, SaturationHigh},
		{SaturationFeatures{Type: TargetEvent, ViewCount: 201}, SaturationHigh},
		{SaturationFeatures{Type: TargetEvent, PopularityScore: 400}, SaturationMedium},
		{SaturationFeatures{Type: TargetEvent, UniqueVisitors: 61}, SaturationMedium},
		{SaturationFeatures{Type: TargetEvent, PopularityScore: 200}, SaturationLow},
		{SaturationFeatures{Type: TargetEvent, ViewCount: 61}, SaturationLow},
		{SaturationFeatures{Type: TargetEvent, UniqueVisitors: 30, ViewCount: 60, PopularityScore: 150}, SaturationNormal},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("uv=%d_views=%d_pop=%d", tc.features.UniqueVisitors, tc.features.ViewCount, tc.features.PopularityScore), func(t *testing.T) {
			require.Equal(t, tc.want, SaturationEstimate(tc.features))
		})
	}
}

func TestSaturationLabelFor(t *testing.T) {
	require.Equal(t, "Normal", SaturationLabelFor(SaturationNormal))
	require.Equal(t, "Baja", SaturationLabelFor(SaturationLow))
	require.Equal(t, "Media", SaturationLabelFor(SaturationMedium))
	require.Equal(t, "Alta", SaturationLabelFor(SaturationHigh))
	require.Equal(t, "Normal", SaturationLabelFor(99), "unknown levels map to Normal")
}
