package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/middleware"
	"github.com/stackit-forum/stackit-api/internal/service"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

// AdminHandler exposes the moderation queue, verdict endpoints, and the
// broadcast tool. Every route here sits behind the admin role gate.
type AdminHandler struct {
	moderation    service.ModerationService
	notifications service.NotificationService
	logger        zerolog.Logger
}

// NewAdminHandler constructs a handler instance.
func NewAdminHandler(moderation service.ModerationService, notifications service.NotificationService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		moderation:    moderation,
		notifications: notifications,
		logger:        logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register binds the admin routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/reports", h.pendingReports)
	router.Post("/reports/:reportID/resolve", h.resolveReport)
	router.Post("/posts/:postID/moderate", h.moderatePost)
	router.Post("/posts/:postID/comments/:commentID/moderate", h.moderateComment)
	router.Post("/broadcast", h.broadcast)
}

func (h *AdminHandler) pendingReports(c *fiber.Ctx) error {
	reports, err := h.moderation.PendingReports(c.UserContext())
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load reports")
	}

	return utils.SendSuccess(c, "pending reports", reports)
}

// resolveReport resolves the named report together with every other
// pending report filed against the same post.
func (h *AdminHandler) resolveReport(c *fiber.Ctx) error {
	resolved, err := h.moderation.ResolveReport(c.UserContext(), c.Params("reportID"), middleware.Username(c))
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "report not found")
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve report")
	}

	return utils.SendSuccess(c, "reports resolved", fiber.Map{"resolved": resolved})
}

func (h *AdminHandler) moderatePost(c *fiber.Ctx) error {
	var payload dto.ModerationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	err := h.moderation.ModeratePost(c.UserContext(), c.Params("postID"), payload.Action, middleware.Username(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		case errors.Is(err, service.ErrPostNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "post not found")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to moderate post")
		}
	}

	return utils.SendSuccess(c, "post moderated", nil)
}

func (h *AdminHandler) moderateComment(c *fiber.Ctx) error {
	var payload dto.ModerationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	err := h.moderation.ModerateComment(c.UserContext(), c.Params("postID"), c.Params("commentID"), payload.Action, middleware.Username(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		case errors.Is(err, service.ErrCommentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "comment not found")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to moderate comment")
		}
	}

	return utils.SendSuccess(c, "comment moderated", nil)
}

func (h *AdminHandler) broadcast(c *fiber.Ctx) error {
	var payload dto.BroadcastRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	recipients, err := h.notifications.Broadcast(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to broadcast")
	}

	return utils.SendSuccess(c, "broadcast sent", fiber.Map{"recipients": recipients})
}
