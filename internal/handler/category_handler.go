package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// CategoryHandler exposes the category endpoints.
type CategoryHandler struct {
	service service.CategoryService
	admin   []fiber.Handler
	logger  zerolog.Logger
}

// NewCategoryHandler constructs the handler. admin guards write routes.
func NewCategoryHandler(svc service.CategoryService, admin []fiber.Handler, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		admin:   admin,
		logger:  logger.With().Str("component", "category_handler").Logger(),
	}
}

// Register wires the category routes.
func (h *CategoryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", guarded(h.admin, h.create)...)
	router.Delete("/:id", guarded(h.admin, h.delete)...)
}

func (h *CategoryHandler) list(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list categories")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list categories")
	}

	return utils.SendSuccess(c, "categories retrieved", categories)
}

func (h *CategoryHandler) create(c *fiber.Ctx) error {
	var payload dto.CategoryCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	category, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create category")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create category")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "category created", category)
}

func (h *CategoryHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete category")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete category")
	}

	return utils.SendSuccess(c, "category deleted", nil)
}
