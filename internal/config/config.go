package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// TimeOfDay is a wall-clock trigger time for scheduled batch jobs.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	MLServiceURL      string
	MLTimeout         time.Duration
	AnalyticsTimezone string
	RetentionDays     int
	BatchDailyAt      TimeOfDay
	BatchWeeklyAt     TimeOfDay
	DashboardCacheTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Location resolves the configured analytics timezone. Day boundaries, batch
// schedules and feature assembly all derive from this location, never from the
// process-local zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.AnalyticsTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics timezone %q: %w", c.AnalyticsTimezone, err)
	}
	return loc, nil
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CAMPUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Campus API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("ml.url", "http://localhost:8000")
	v.SetDefault("ml.timeout", "5s")
	v.SetDefault("analytics.timezone", "America/Caracas")
	v.SetDefault("analytics.retention_days", 90)
	v.SetDefault("batch.daily_at", "02:00")
	v.SetDefault("batch.weekly_at", "03:00")
	v.SetDefault("dashboard.cache_ttl", "5m")

	mlTimeout, err := time.ParseDuration(v.GetString("ml.timeout"))
	if err != nil || mlTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid ml timeout: %q", v.GetString("ml.timeout"))
	}

	ttl, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	dailyAt, err := ParseTimeOfDay(v.GetString("batch.daily_at"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid batch daily trigger: %w", err)
	}

	weeklyAt, err := ParseTimeOfDay(v.GetString("batch.weekly_at"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid batch weekly trigger: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		MLServiceURL:      strings.TrimRight(v.GetString("ml.url"), "/"),
		MLTimeout:         mlTimeout,
		AnalyticsTimezone: v.GetString("analytics.timezone"),
		RetentionDays:     v.GetInt("analytics.retention_days"),
		BatchDailyAt:      dailyAt,
		BatchWeeklyAt:     weeklyAt,
		DashboardCacheTTL: ttl,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 90
	}

	return cfg, nil
}

// ParseTimeOfDay parses an "HH:MM" wall-clock value.
func ParseTimeOfDay(spec string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("expected HH:MM, got %q", spec)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", spec)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", spec)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}
