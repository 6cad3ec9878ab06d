package ml

import "math"

// ModelTypeFallback tags responses produced by the closed-form estimators.
const ModelTypeFallback = "fallback"

const fallbackConfidence = 0.3

var saturationLabels = map[int]string{
	SaturationNormal: "Normal",
	SaturationLow:    "Baja",
	SaturationMedium: "Media",
	SaturationHigh:   "Alta",
}

// SaturationLabelFor maps a saturation level to its display label.
func SaturationLabelFor(level int) string {
	if label, ok := saturationLabels[level]; ok {
		return label
	}
	return saturationLabels[SaturationNormal]
}

// AttendanceEstimate is the closed-form attendance estimator used when the
// scoring service is unreachable: uniqueVisitors * 1.5, scaled up during the
// 14-18h peak and down outside 9-19h.
func AttendanceEstimate(f AttendanceFeatures) int {
	base := float64(f.UniqueVisitors) * 1.5

	multiplier := 1.0
	switch {
	case f.Hour >= 14 && f.Hour <= 18:
		multiplier = 1.2
	case f.Hour < 9 || f.Hour > 19:
		multiplier = 0.8
	}

	return int(math.Round(base * multiplier))
}

// MobilityEstimate is the closed-form mobility-demand estimator: visitors
// amplified by scheduled events, scaled by the 10-16h mobility peak.
func MobilityEstimate(f MobilityFeatures) int {
	base := float64(f.UniqueVisitors) * (1 + float64(f.EventsCount)*0.5)

	multiplier := 1.0
	switch {
	case f.Hour >= 10 && f.Hour <= 16:
		multiplier = 1.3
	case f.Hour < 8 || f.Hour > 19:
		multiplier = 0.7
	}

	return int(math.Round(base * multiplier))
}

// SaturationEstimate maps counters onto a 0-3 saturation level with thresholds
// that differ between buildings and events.
func SaturationEstimate(f SaturationFeatures) int {
	if f.Type == TargetBuilding {
		switch {
		case f.UniqueVisitors > 150 || f.ViewCount > 300:
			return SaturationHigh
		case f.UniqueVisitors > 100 || f.ViewCount > 200:
			return SaturationMedium
		case f.UniqueVisitors > 50 || f.ViewCount > 100:
			return SaturationLow
		}
		return SaturationNormal
	}

	switch {
	case f.UniqueVisitors > 100 || f.ViewCount > 200 || f.PopularityScore > 500:
		return SaturationHigh
	case f.UniqueVisitors > 60 || f.ViewCount > 120 || f.PopularityScore > 300:
		return SaturationMedium
	case f.UniqueVisitors > 30 || f.ViewCount > 60 || f.PopularityScore > 150:
		return SaturationLow
	}
	return SaturationNormal
}

func fallbackAttendance(f AttendanceFeatures) Prediction {
	return Prediction{
		Prediction:   float64(AttendanceEstimate(f)),
		Confidence:   fallbackConfidence,
		ModelType:    ModelTypeFallback,
		FeaturesUsed: []string{},
	}
}

func fallbackMobility(f MobilityFeatures) Prediction {
	return Prediction{
		Prediction:   float64(MobilityEstimate(f)),
		Confidence:   fallbackConfidence,
		ModelType:    ModelTypeFallback,
		FeaturesUsed: []string{},
	}
}

func fallbackSaturation(f SaturationFeatures) SaturationPrediction {
	level := SaturationEstimate(f)
	return SaturationPrediction{
		SaturationLevel: level,
		SaturationLabel: SaturationLabelFor(level),
		Confidence:      fallbackConfidence,
		ModelType:       ModelTypeFallback,
		FeaturesUsed:    []string{},
	}
}
