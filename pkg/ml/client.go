package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 5 * time.Second

// errUnavailable marks transport failures and 503 responses. It never leaves
// this package: callers receive the fallback estimate instead.
var errUnavailable = errors.New("ml service unavailable")

// ServiceError is returned when the scoring service is reachable but answers
// with a non-503 error. It propagates unchanged, without a fallback.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ml service returned status %d: %s", e.StatusCode, e.Body)
}

// Config holds connection settings for the scoring service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the external prediction service and degrades to the
// closed-form estimators when it is unreachable.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// New constructs a prediction client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ml service base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "ml_client").Logger(),
	}, nil
}

// PredictAttendance scores event attendance, falling back to the closed-form
// estimator when the service is unreachable or answers 503.
func (c *Client) PredictAttendance(ctx context.Context, features AttendanceFeatures) (Prediction, error) {
	var prediction Prediction
	err := c.post(ctx, "/predict/attendance", features, &prediction)
	if errors.Is(err, errUnavailable) {
		c.logger.Warn().Err(err).Msg("scoring service unavailable, using attendance fallback")
		return fallbackAttendance(features), nil
	}
	if err != nil {
		return Prediction{}, err
	}

	return prediction, nil
}

// PredictMobility scores building mobility demand with the same fallback rules.
func (c *Client) PredictMobility(ctx context.Context, features MobilityFeatures) (Prediction, error) {
	var prediction Prediction
	err := c.post(ctx, "/predict/mobility", features, &prediction)
	if errors.Is(err, errUnavailable) {
		c.logger.Warn().Err(err).Msg("scoring service unavailable, using mobility fallback")
		return fallbackMobility(features), nil
	}
	if err != nil {
		return Prediction{}, err
	}

	return prediction, nil
}

// PredictSaturation scores saturation with the same fallback rules.
func (c *Client) PredictSaturation(ctx context.Context, features SaturationFeatures) (SaturationPrediction, error) {
	var prediction SaturationPrediction
	err := c.post(ctx, "/predict/saturation", features, &prediction)
	if errors.Is(err, errUnavailable) {
		c.logger.Warn().Err(err).Msg("scoring service unavailable, using saturation fallback")
		return fallbackSaturation(features), nil
	}
	if err != nil {
		return SaturationPrediction{}, err
	}

	return prediction, nil
}

// Health probes the scoring service. All failures fold into Available=false.
func (c *Client) Health(ctx context.Context) HealthStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthStatus{Available: false, Error: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return HealthStatus{Available: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return HealthStatus{Available: false, Error: fmt.Sprintf("health endpoint returned status %d", resp.StatusCode)}
	}

	var payload struct {
		ModelsLoaded map[string]bool `json:"models_loaded"`
		ModelLoaded  *bool           `json:"model_loaded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return HealthStatus{Available: false, Error: err.Error()}
	}

	status := HealthStatus{Available: true, ModelsLoaded: payload.ModelsLoaded}
	if status.ModelsLoaded == nil && payload.ModelLoaded != nil {
		status.ModelsLoaded = map[string]bool{"default": *payload.ModelLoaded}
	}

	return status
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Connection refused and timeouts both count as unavailability.
		return fmt.Errorf("%w: %v", errUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: status %d", errUnavailable, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServiceError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
