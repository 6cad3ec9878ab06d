package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("CAMPUS_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "Campus API", cfg.AppName)
	require.Equal(t, "8080", cfg.AppPort)
	require.Equal(t, "http://localhost:8000", cfg.MLServiceURL)
	require.Equal(t, 5*time.Second, cfg.MLTimeout)
	require.Equal(t, "America/Caracas", cfg.AnalyticsTimezone)
	require.Equal(t, 90, cfg.RetentionDays)
	require.Equal(t, TimeOfDay{Hour: 2, Minute: 0}, cfg.BatchDailyAt)
	require.Equal(t, TimeOfDay{Hour: 3, Minute: 0}, cfg.BatchWeeklyAt)
	require.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("CAMPUS_JWT_SECRET", "")

	_, err := Load()
	require.ErrorContains(t, err, "jwt secret")
}

func TestLoadTrimsMLServiceURL(t *testing.T) {
	t.Setenv("CAMPUS_JWT_SECRET", "test-secret")
	t.Setenv("CAMPUS_ML_URL", "http://ml.internal:8000/")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://ml.internal:8000", cfg.MLServiceURL)
}

func TestLoadRejectsBadBatchTrigger(t *testing.T) {
	t.Setenv("CAMPUS_JWT_SECRET", "test-secret")
	t.Setenv("CAMPUS_BATCH_DAILY_AT", "25:00")

	_, err := Load()
	require.ErrorContains(t, err, "invalid batch daily trigger")
}

func TestLoadNormalisesRetention(t *testing.T) {
	t.Setenv("CAMPUS_JWT_SECRET", "test-secret")
	t.Setenv("CAMPUS_ANALYTICS_RETENTION_DAYS", "-5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 90, cfg.RetentionDays)
}

func TestHTTPAddress(t *testing.T) {
	require.Equal(t, ":8080", Config{AppPort: "8080"}.HTTPAddress())
	require.Equal(t, ":9000", Config{AppPort: ":9000"}.HTTPAddress())
}

func TestLocationResolvesConfiguredZone(t *testing.T) {
	loc, err := Config{AnalyticsTimezone: "America/Caracas"}.Location()
	require.NoError(t, err)
	require.Equal(t, "America/Caracas", loc.String())

	_, err = Config{AnalyticsTimezone: "Mars/Olympus"}.Location()
	require.Error(t, err)
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		spec    string
		want    TimeOfDay
		wantErr bool
	}{
		{spec: "02:00", want: TimeOfDay{Hour: 2, Minute: 0}},
		{spec: "23:59", want: TimeOfDay{Hour: 23, Minute: 59}},
		{spec: " 07:15 ", want: TimeOfDay{Hour: 7, Minute: 15}},
		{spec: "24:00", wantErr: true},
		{spec: "10:60", wantErr: true},
		{spec: "0200", wantErr: true},
		{spec: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.spec)
		if tc.wantErr {
			require.Error(t, err, tc.spec)
			continue
		}
		require.NoError(t, err, tc.spec)
		require.Equal(t, tc.want, got)
	}
}
