package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/stackit-forum/stackit-api/internal/middleware"
	"github.com/stackit-forum/stackit-api/internal/service"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

const notificationCacheControl = "private, max-age=60"

// NotificationHandler serves the authenticated caller's inbox.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register binds the notification routes.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

// list returns the inbox newest first. Fetching the inbox marks every
// entry read.
func (h *NotificationHandler) list(c *fiber.Ctx) error {
	notifications, err := h.service.ListAndMarkRead(c.UserContext(), middleware.UserToken(c))
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load notifications")
	}

	c.Set(fiber.HeaderCacheControl, notificationCacheControl)

	return utils.SendSuccess(c, "notifications", notifications)
}
