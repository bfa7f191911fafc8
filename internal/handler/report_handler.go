package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/service"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

// ReportHandler lets signed-in users flag content for moderation.
type ReportHandler struct {
	service service.ModerationService
	logger  zerolog.Logger
}

// NewReportHandler constructs a handler instance.
func NewReportHandler(service service.ModerationService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register binds the report routes.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Post("/", h.createReport)
}

func (h *ReportHandler) createReport(c *fiber.Ctx) error {
	var payload dto.ReportCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	report, err := h.service.ReportContent(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to file report")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "report filed", report)
}
