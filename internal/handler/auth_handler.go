package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/stackit-forum/stackit-api/internal/config"
	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/middleware"
	"github.com/stackit-forum/stackit-api/internal/service"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

// AuthHandler provides HTTP endpoints for the OTP and session lifecycle.
type AuthHandler struct {
	service service.AuthService
	cfg     config.Config
	logger  zerolog.Logger
}

// NewAuthHandler constructs a handler instance.
func NewAuthHandler(service service.AuthService, cfg config.Config, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cfg:     cfg,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds the auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/otp", h.sendOTP)
	router.Post("/signin", h.signIn)
	router.Post("/logout", h.logout)
}

func (h *AuthHandler) sendOTP(c *fiber.Ctx) error {
	var payload dto.SendOTPRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	retryAfter, err := h.service.SendOTP(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		case errors.Is(err, service.ErrCaptchaFailed):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrRateLimited):
			return utils.SendError(c, fiber.StatusTooManyRequests, err.Error())
		case errors.Is(err, service.ErrOTPCooldown):
			return c.Status(fiber.StatusTooManyRequests).JSON(utils.APIResponse{
				Success: false,
				Message: err.Error(),
				Data:    dto.SendOTPResponse{RetryAfter: retryAfter},
			})
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to send otp")
		}
	}

	return utils.SendSuccess(c, "otp sent", nil)
}

func (h *AuthHandler) signIn(c *fiber.Ctx) error {
	var payload dto.SignInRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, cookieValue, err := h.service.SignIn(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		case errors.Is(err, service.ErrOTPNotFound), errors.Is(err, service.ErrOTPInvalid):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid otp")
		case errors.Is(err, service.ErrOTPExpired):
			return utils.SendError(c, fiber.StatusUnauthorized, "otp expired")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign in")
		}
	}

	c.Cookie(sessionCookie(h.cfg, cookieValue, int(h.cfg.SessionTTL.Seconds())))

	return utils.SendSuccess(c, "signed in", dto.SessionResponse{
		Role:     user.Role,
		Username: user.Username,
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if cookie := c.Cookies(middleware.SessionCookieName); cookie != "" {
		if err := h.service.Logout(c.UserContext(), cookie); err != nil {
			h.logger.Warn().Err(err).Msg("failed to revoke session on logout")
		}
	}

	c.Cookie(sessionCookie(h.cfg, "", -1))

	return utils.SendSuccess(c, "signed out", nil)
}

// sessionCookie builds the encrypted session cookie with the hardening the
// environment demands. A negative maxAge clears it.
func sessionCookie(cfg config.Config, value string, maxAge int) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   cfg.IsProduction(),
	}
	if cfg.IsProduction() && cfg.CookieDomain != "" {
		cookie.Domain = cfg.CookieDomain
	}
	return cookie
}
