package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/credentia/credentia-api/internal/service"
	"github.com/credentia/credentia-api/internal/utils"
)

// CertificateHandler wires issuance and verification HTTP routes.
type CertificateHandler struct {
	service service.CertificateService
	logger  zerolog.Logger
}

// NewCertificateHandler constructs the handler.
func NewCertificateHandler(service service.CertificateService, logger zerolog.Logger) *CertificateHandler {
	return &CertificateHandler{
		service: service,
		logger:  logger.With().Str("component", "certificate_handler").Logger(),
	}
}

// Register attaches issuance endpoints to the enrollments group.
func (h *CertificateHandler) Register(enrollments fiber.Router) {
	enrollments.Post("/:id/certificate", h.issue)
	enrollments.Get("/:id/certificate", h.get)
}

// RegisterVerify attaches the public verification endpoint. Middlewares are
// scoped to this one route so the rest of the API is unaffected.
func (h *CertificateHandler) RegisterVerify(router fiber.Router, middlewares ...fiber.Handler) {
	router.Get("/certificates/verify/:code", append(middlewares, h.verify)...)
}

func (h *CertificateHandler) issue(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	certificate, err := h.service.Issue(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "certificate issued", certificate)
}

func (h *CertificateHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	certificate, err := h.service.GetForEnrollment(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "certificate retrieved", certificate)
}

func (h *CertificateHandler) verify(c *fiber.Ctx) error {
	code := c.Params("code")

	certificate, err := h.service.Verify(c.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "certificate not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "certificate verified", certificate)
}

func (h *CertificateHandler) handleError(c *fiber.Ctx, err error) error {
	var notEligible *service.NotEligibleError
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
	case errors.Is(err, service.ErrCertificateNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "certificate not found")
	case errors.As(err, &notEligible):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(utils.APIResponse{
			Success: false,
			Message: "enrollment not eligible for certificate",
			Data: fiber.Map{
				"reason":  notEligible.Reason,
				"details": notEligible.Details,
			},
		})
	default:
		return h.internalError(c, err)
	}
}

func (h *CertificateHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
