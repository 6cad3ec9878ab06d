package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// EventHandler exposes the event catalogue endpoints.
type EventHandler struct {
	service  service.EventService
	recorder service.RecorderService
	admin    []fiber.Handler
	logger   zerolog.Logger
}

// NewEventHandler constructs the handler. admin guards write routes.
func NewEventHandler(svc service.EventService, recorder service.RecorderService, admin []fiber.Handler, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service:  svc,
		recorder: recorder,
		admin:    admin,
		logger:   logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register wires the event routes.
func (h *EventHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)

	router.Post("", guarded(h.admin, h.create)...)
	router.Put("/:id", guarded(h.admin, h.update)...)
	router.Delete("/:id", guarded(h.admin, h.delete)...)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
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
	buildingID, err := parseQueryUint(c, "buildingId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid buildingId")
	}

	result, err := h.service.List(c.UserContext(), dto.EventListRequest{
		Page:       page,
		PageSize:   pageSize,
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		BuildingID: buildingID,
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list events")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list events")
	}

	return utils.SendSuccess(c, "events retrieved", result)
}

func (h *EventHandler) get(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	event, err := h.service.Get(c.UserContext(), id)
	if errors.Is(err, service.ErrNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "event not found")
	}
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load event")
	}

	h.recordView(c, event)
	return utils.SendSuccess(c, "event retrieved", event)
}

// recordView feeds the analytics pipeline; failures never affect the response.
func (h *EventHandler) recordView(c *fiber.Ctx, event dto.EventResponse) {
	if h.recorder == nil {
		return
	}

	input := service.EventViewInput{
		EventID:       event.ID,
		EventTitle:    event.Title,
		BuildingID:    event.BuildingID,
		Categories:    event.Categories,
		Status:        event.Status,
		Authenticated: userIDFromContext(c) != nil,
	}

	if err := h.recorder.RecordEventView(c.UserContext(), input); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("event_id", event.ID).Msg("failed to record event view")
	}
}

func (h *EventHandler) create(c *fiber.Ctx) error {
	var payload dto.EventCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	event, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create event")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", event)
}

func (h *EventHandler) update(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	var payload dto.EventUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	event, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if errors.Is(err, service.ErrNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "event not found")
	}
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update event")
	}

	return utils.SendSuccess(c, "event updated", event)
}

func (h *EventHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete event")
	}

	return utils.SendSuccess(c, "event deleted", nil)
}
