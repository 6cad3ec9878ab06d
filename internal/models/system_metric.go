package models

import (
	"time"

	"gorm.io/datatypes"
)

// Metric types captured in the system metrics time series.
const (
	MetricAPIResponseTime   = "api_response_time"
	MetricAPIErrorRate      = "api_error_rate"
	MetricDatabaseQueryTime = "database_query_time"
	MetricActiveUsers       = "active_users"
	MetricRequestsPerMinute = "requests_per_minute"
	MetricMemoryUsage       = "memory_usage"
	MetricCPUUsage          = "cpu_usage"
)

var metricTypes = map[string]struct{}{
	MetricAPIResponseTime: {}, MetricAPIErrorRate: {}, MetricDatabaseQueryTime: {},
	MetricActiveUsers: {}, MetricRequestsPerMinute: {}, MetricMemoryUsage: {}, MetricCPUUsage: {},
}

// ValidMetricType reports whether metricType belongs to the metric enum.
func ValidMetricType(metricType string) bool {
	_, ok := metricTypes[metricType]
	return ok
}

// SystemMetric is a write-once time-series sample, pruned by age only.
type SystemMetric struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	MetricType string            `gorm:"size:32;not null;index:idx_metric_type_ts,priority:1" json:"metric_type"`
	Value      float64           `gorm:"not null" json:"value"`
	Unit       string            `gorm:"size:16;default:ms" json:"unit"`
	Endpoint   string            `gorm:"size:160" json:"endpoint,omitempty"`
	ErrorCode  string            `gorm:"size:32" json:"error_code,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	Timestamp  time.Time         `gorm:"not null;index;index:idx_metric_type_ts,priority:2" json:"timestamp"`
}

// TableName returns the metrics table name.
func (SystemMetric) TableName() string {
	return "system_metrics"
}
