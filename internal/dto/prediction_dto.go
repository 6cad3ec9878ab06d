package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/pkg/ml"
)

// AttendancePredictionResponse is the attendance forecast for one event.
type AttendancePredictionResponse struct {
	EventID      uint                  `json:"event_id"`
	EventTitle   string                `json:"event_title"`
	Date         time.Time             `json:"date"`
	Prediction   float64               `json:"prediction"`
	Confidence   float64               `json:"confidence"`
	ModelType    string                `json:"model_type"`
	FeaturesUsed []string              `json:"features_used"`
	Features     ml.AttendanceFeatures `json:"features"`
}

// BatchAttendanceRequest lists events to score in one call.
type BatchAttendanceRequest struct {
	EventIDs []uint `json:"event_ids" validate:"required,min=1,max=100"`
}

// BatchPredictionError records one failed event in a batch scoring call.
type BatchPredictionError struct {
	EventID uint   `json:"event_id"`
	Error   string `json:"error"`
}

// BatchAttendanceResponse bundles per-event predictions and failures.
type BatchAttendanceResponse struct {
	Predictions []AttendancePredictionResponse `json:"predictions"`
	Errors      []BatchPredictionError         `json:"errors"`
}

// MobilityPredictionResponse is the mobility-demand forecast for one building.
type MobilityPredictionResponse struct {
	BuildingID   uint                `json:"building_id"`
	BuildingName string              `json:"building_name"`
	Date         time.Time           `json:"date"`
	Prediction   float64             `json:"prediction"`
	Confidence   float64             `json:"confidence"`
	ModelType    string              `json:"model_type"`
	FeaturesUsed []string            `json:"features_used"`
	Features     ml.MobilityFeatures `json:"features"`
}

// SaturationPredictionResponse is the saturation forecast for a building or event.
type SaturationPredictionResponse struct {
	TargetType      string                `json:"target_type"`
	TargetID        uint                  `json:"target_id"`
	TargetName      string                `json:"target_name"`
	Date            time.Time             `json:"date"`
	SaturationLevel int                   `json:"saturation_level"`
	SaturationLabel string                `json:"saturation_label"`
	Confidence      float64               `json:"confidence"`
	ModelType       string                `json:"model_type"`
	FeaturesUsed    []string              `json:"features_used"`
	Features        ml.SaturationFeatures `json:"features"`
}
