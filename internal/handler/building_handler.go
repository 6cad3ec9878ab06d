package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// BuildingHandler exposes the building catalogue endpoints.
type BuildingHandler struct {
	service  service.BuildingService
	recorder service.RecorderService
	admin    []fiber.Handler
	logger   zerolog.Logger
}

// NewBuildingHandler constructs the handler. admin guards write routes.
func NewBuildingHandler(svc service.BuildingService, recorder service.RecorderService, admin []fiber.Handler, logger zerolog.Logger) *BuildingHandler {
	return &BuildingHandler{
		service:  svc,
		recorder: recorder,
		admin:    admin,
		logger:   logger.With().Str("component", "building_handler").Logger(),
	}
}

// Register wires the building routes.
func (h *BuildingHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)

	router.Post("", guarded(h.admin, h.create)...)
	router.Put("/:id", guarded(h.admin, h.update)...)
	router.Delete("/:id", guarded(h.admin, h.delete)...)
}

func (h *BuildingHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	result, err := h.service.List(c.UserContext(), dto.BuildingListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list buildings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list buildings")
	}

	return utils.SendSuccess(c, "buildings retrieved", result)
}

func (h *BuildingHandler) get(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid building id")
	}

	building, err := h.service.Get(c.UserContext(), id)
	if errors.Is(err, service.ErrNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "building not found")
	}
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load building")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load building")
	}

	h.recordView(c, building)
	return utils.SendSuccess(c, "building retrieved", building)
}

// recordView feeds the analytics pipeline; failures never affect the response.
func (h *BuildingHandler) recordView(c *fiber.Ctx, building dto.BuildingResponse) {
	if h.recorder == nil {
		return
	}

	userID := userIDFromContext(c)
	input := service.BuildingViewInput{
		BuildingID:    building.ID,
		BuildingName:  building.Name,
		Authenticated: userID != nil,
		UserRole:      userRoleFromContext(c),
	}

	if raw := strings.TrimSpace(c.Query("duration")); raw != "" {
		if duration, err := strconv.ParseFloat(raw, 64); err == nil && duration >= 0 {
			input.ViewDurationSeconds = &duration
		}
	}

	if err := h.recorder.RecordBuildingView(c.UserContext(), input); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("building_id", building.ID).Msg("failed to record building view")
	}
}

func (h *BuildingHandler) create(c *fiber.Ctx) error {
	var payload dto.BuildingCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	building, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create building")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create building")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "building created", building)
}

func (h *BuildingHandler) update(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid building id")
	}

	var payload dto.BuildingUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	building, err := h.service.Update(c.UserContext(), id, payload)
	if errors.Is(err, service.ErrNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "building not found")
	}
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update building")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update building")
	}

	return utils.SendSuccess(c, "building updated", building)
}

func (h *BuildingHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid building id")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "building not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete building")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete building")
	}

	return utils.SendSuccess(c, "building deleted", nil)
}
