package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/service"
	"github.com/credentia/credentia-api/internal/utils"
)

// LearnerHandler wires learner HTTP routes.
type LearnerHandler struct {
	service service.LearnerService
	logger  zerolog.Logger
}

// NewLearnerHandler constructs the handler.
func NewLearnerHandler(service service.LearnerService, logger zerolog.Logger) *LearnerHandler {
	return &LearnerHandler{
		service: service,
		logger:  logger.With().Str("component", "learner_handler").Logger(),
	}
}

// Register attaches learner endpoints to the router group.
func (h *LearnerHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
}

func (h *LearnerHandler) list(c *fiber.Ctx) error {
	learners, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "learners retrieved", learners)
}

func (h *LearnerHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	learner, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLearnerNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "learner not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "learner retrieved", learner)
}

func (h *LearnerHandler) create(c *fiber.Ctx) error {
	var payload dto.LearnerCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	learner, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "learner created", learner)
}

func (h *LearnerHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "email already registered")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *LearnerHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
