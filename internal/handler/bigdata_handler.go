package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// BigDataHandler exposes the analytics reporting and batch trigger endpoints.
type BigDataHandler struct {
	stats  service.StatsService
	batch  service.BatchService
	admin  []fiber.Handler
	logger zerolog.Logger
}

// NewBigDataHandler constructs the handler. admin guards the batch trigger.
func NewBigDataHandler(stats service.StatsService, batch service.BatchService, admin []fiber.Handler, logger zerolog.Logger) *BigDataHandler {
	return &BigDataHandler{
		stats:  stats,
		batch:  batch,
		admin:  admin,
		logger: logger.With().Str("component", "bigdata_handler").Logger(),
	}
}

// Register wires the analytics routes.
func (h *BigDataHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/buildings/stats", h.buildingStats)
	router.Get("/events/stats", h.eventStats)
	router.Get("/buildings/peak-hours", h.peakHours)
	router.Post("/batch/run", guarded(h.admin, h.runBatch)...)
}

func (h *BigDataHandler) dashboard(c *fiber.Ctx) error {
	result, err := h.stats.Dashboard(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build dashboard")
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "dashboard retrieved", result)
}

func (h *BigDataHandler) buildingStats(c *fiber.Ctx) error {
	query, err := statsQueryFromRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.stats.BuildingStats(c.UserContext(), query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load building stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load building stats")
	}

	return utils.SendSuccess(c, "building stats retrieved", result)
}

func (h *BigDataHandler) eventStats(c *fiber.Ctx) error {
	query, err := statsQueryFromRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	query.Status = c.Query("status")

	result, err := h.stats.EventStats(c.UserContext(), query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load event stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load event stats")
	}

	return utils.SendSuccess(c, "event stats retrieved", result)
}

func (h *BigDataHandler) peakHours(c *fiber.Ctx) error {
	query, err := statsQueryFromRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	result, err := h.stats.PeakHours(c.UserContext(), query, limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load peak hours")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load peak hours")
	}

	return utils.SendSuccess(c, "peak hours retrieved", result)
}

// runBatch triggers the pipeline synchronously and surfaces the real error so
// operators can see which step failed.
func (h *BigDataHandler) runBatch(c *fiber.Ctx) error {
	result, err := h.batch.RunBatchProcessing(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("batch processing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "batch processing completed", result)
}

func statsQueryFromRequest(c *fiber.Ctx) (dto.StatsQuery, error) {
	start, err := parseQueryDate(c, "startDate")
	if err != nil {
		return dto.StatsQuery{}, fiber.NewError(fiber.StatusBadRequest, "invalid startDate")
	}
	end, err := parseQueryDate(c, "endDate")
	if err != nil {
		return dto.StatsQuery{}, fiber.NewError(fiber.StatusBadRequest, "invalid endDate")
	}
	buildingID, err := parseQueryUint(c, "buildingId")
	if err != nil {
		return dto.StatsQuery{}, fiber.NewError(fiber.StatusBadRequest, "invalid buildingId")
	}

	return dto.StatsQuery{StartDate: start, EndDate: end, BuildingID: buildingID}, nil
}
