package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
	"github.com/noah-isme/campus-go-api/pkg/ml"
)

// PredictionHandler exposes the forecast endpoints.
type PredictionHandler struct {
	service service.PredictionService
	logger  zerolog.Logger
}

// NewPredictionHandler constructs the handler.
func NewPredictionHandler(service service.PredictionService, logger zerolog.Logger) *PredictionHandler {
	return &PredictionHandler{
		service: service,
		logger:  logger.With().Str("component", "prediction_handler").Logger(),
	}
}

// Register wires the prediction routes.
func (h *PredictionHandler) Register(router fiber.Router) {
	router.Get("/attendance/:eventId", h.attendance)
	router.Post("/attendance/batch", h.attendanceBatch)
	router.Get("/mobility/:buildingId", h.mobility)
	router.Get("/saturation/:type/:id", h.saturation)
	router.Get("/health", h.health)
}

func (h *PredictionHandler) attendance(c *fiber.Ctx) error {
	eventID, err := parseParamUint(c, "eventId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	result, err := h.service.PredictAttendance(c.UserContext(), eventID)
	if err != nil {
		return h.sendPredictionError(c, err, "failed to predict attendance")
	}

	return utils.SendSuccess(c, "attendance predicted", result)
}

func (h *PredictionHandler) attendanceBatch(c *fiber.Ctx) error {
	var req dto.BatchAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.PredictAttendanceBatch(c.UserContext(), req)
	if err != nil {
		return h.sendPredictionError(c, err, "failed to predict attendance batch")
	}

	return utils.SendSuccess(c, "attendance batch predicted", result)
}

func (h *PredictionHandler) mobility(c *fiber.Ctx) error {
	buildingID, err := parseParamUint(c, "buildingId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid building id")
	}

	result, err := h.service.PredictMobility(c.UserContext(), buildingID)
	if err != nil {
		return h.sendPredictionError(c, err, "failed to predict mobility")
	}

	return utils.SendSuccess(c, "mobility predicted", result)
}

func (h *PredictionHandler) saturation(c *fiber.Ctx) error {
	targetID, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid target id")
	}

	result, err := h.service.PredictSaturation(c.UserContext(), c.Params("type"), targetID)
	if err != nil {
		return h.sendPredictionError(c, err, "failed to predict saturation")
	}

	return utils.SendSuccess(c, "saturation predicted", result)
}

func (h *PredictionHandler) health(c *fiber.Ctx) error {
	status := h.service.MLHealth(c.UserContext())
	return utils.SendSuccess(c, "ml health retrieved", status)
}

func (h *PredictionHandler) sendPredictionError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "target not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var serviceErr *ml.ServiceError
	if errors.As(err, &serviceErr) {
		requestLogger(h.logger, c).Error().Err(err).Msg("scoring service error")
		return utils.SendError(c, fiber.StatusBadGateway, "scoring service error")
	}

	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
