package ml

// Saturation target discriminator.
const (
	TargetBuilding = 0
	TargetEvent    = 1
)

// Saturation levels returned by the scoring service and the fallback.
const (
	SaturationNormal = 0
	SaturationLow    = 1
	SaturationMedium = 2
	SaturationHigh   = 3
)

// AttendanceFeatures is the feature vector for event attendance predictions.
// Field names follow the scoring service contract.
type AttendanceFeatures struct {
	ViewCount       int64  `json:"viewCount"`
	UniqueVisitors  int64  `json:"uniqueVisitors"`
	DayOfWeek       int    `json:"dayOfWeek"`
	Hour            int    `json:"hour"`
	CategoryCount   int    `json:"category_count"`
	PopularityScore int64  `json:"popularityScore"`
	DateTime        string `json:"date_time"`
}

// MobilityFeatures is the feature vector for building mobility-demand predictions.
type MobilityFeatures struct {
	ViewCount           int64   `json:"viewCount"`
	UniqueVisitors      int64   `json:"uniqueVisitors"`
	DayOfWeek           int     `json:"dayOfWeek"`
	Hour                int     `json:"hour"`
	PeakHour            int     `json:"peakHour"`
	EventsCount         int64   `json:"eventsCount"`
	AverageViewDuration float64 `json:"averageViewDuration"`
	DateTime            string  `json:"date_time"`
}

// SaturationFeatures is the feature vector for saturation-level predictions,
// shared between buildings (Type 0) and events (Type 1).
type SaturationFeatures struct {
	ViewCount           int64   `json:"viewCount"`
	UniqueVisitors      int64   `json:"uniqueVisitors"`
	DayOfWeek           int     `json:"dayOfWeek"`
	Hour                int     `json:"hour"`
	PeakVisits          int64   `json:"peakVisits"`
	AverageViewDuration float64 `json:"averageViewDuration"`
	PopularityScore     int64   `json:"popularityScore"`
	Type                int     `json:"type"`
	DateTime            string  `json:"date_time"`
}

// Prediction is the scoring service response for attendance and mobility.
// ModelType is "fallback" when the closed-form estimator produced the value.
type Prediction struct {
	Prediction   float64  `json:"prediction"`
	Confidence   float64  `json:"confidence"`
	ModelType    string   `json:"model_type"`
	FeaturesUsed []string `json:"features_used"`
}

// SaturationPrediction is the scoring service response for saturation.
type SaturationPrediction struct {
	SaturationLevel int      `json:"saturationLevel"`
	SaturationLabel string   `json:"saturationLabel"`
	Confidence      float64  `json:"confidence"`
	ModelType       string   `json:"model_type"`
	FeaturesUsed    []string `json:"features_used"`
}

// HealthStatus summarises the scoring service health probe.
type HealthStatus struct {
	Available    bool            `json:"available"`
	ModelsLoaded map[string]bool `json:"models_loaded,omitempty"`
	Error        string          `json:"error,omitempty"`
}
