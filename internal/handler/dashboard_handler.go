package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/credentia/credentia-api/internal/service"
	"github.com/credentia/credentia-api/internal/utils"
)

// DashboardHandler wires the learner dashboard HTTP route.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoint to the learners group.
func (h *DashboardHandler) Register(learners fiber.Router) {
	learners.Get("/:id/dashboard", h.get)
}

func (h *DashboardHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	dashboard, err := h.service.GetDashboard(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLearnerNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "learner not found")
		}
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	if dashboard.CacheHit {
		c.Set("X-Cache", "HIT")
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}
