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

// feedPreferenceCookie remembers the caller's last feed ordering for an hour.
const (
	feedPreferenceCookie = "orderByField"
	feedCacheControl     = "public, max-age=300, stale-while-revalidate=60"
)

// PostHandler provides HTTP endpoints for posts and the feed.
type PostHandler struct {
	service service.PostService
	auth    service.AuthService
	cfg     config.Config
	logger  zerolog.Logger
}

// NewPostHandler constructs a handler instance.
func NewPostHandler(service service.PostService, auth service.AuthService, cfg config.Config, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		service: service,
		auth:    auth,
		cfg:     cfg,
		logger:  logger.With().Str("component", "post_handler").Logger(),
	}
}

// Register binds the post routes.
func (h *PostHandler) Register(router fiber.Router) {
	router.Get("/", h.feed)
	router.Post("/", h.createPost)
	router.Get("/:postID", h.getPost)
	router.Post("/:postID/vote", h.votePost)
}

// feed serves one page of posts. Serving a page also refreshes the
// caller's sliding session expiry and re-issues the cookie so an active
// reader never gets logged out.
func (h *PostHandler) feed(c *fiber.Ctx) error {
	limitTo, err := parseQueryInt(c, "limitTo")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limitTo")
	}

	query := dto.FeedQuery{
		OrderByField: c.Query("orderByField", "timestamp"),
		LastDocID:    c.Query("lastDocID"),
		LimitTo:      limitTo,
	}
	if query.LimitTo == 0 {
		query.LimitTo = 10
	}

	page, err := h.service.Feed(c.UserContext(), query)
	if err != nil {
		if isValidationError(err) {
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid feed query", fieldErrors(err))
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load feed")
	}

	h.refreshSession(c)

	c.Cookie(&fiber.Cookie{
		Name:     feedPreferenceCookie,
		Value:    query.OrderByField,
		Path:     "/",
		MaxAge:   3600,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.cfg.IsProduction(),
	})
	c.Set(fiber.HeaderCacheControl, feedCacheControl)

	return utils.SendSuccess(c, "feed", page)
}

func (h *PostHandler) createPost(c *fiber.Ctx) error {
	var payload dto.PostCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	post, slug, err := h.service.CreatePost(c.UserContext(), middleware.UserToken(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create post")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "post created", fiber.Map{
		"post": post,
		"slug": slug,
	})
}

func (h *PostHandler) getPost(c *fiber.Ctx) error {
	view, err := h.service.GetPost(c.UserContext(), c.Params("postID"), c.Query("sortBy", service.SortByUpvotes))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "post not found")
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load post")
	}

	return utils.SendSuccess(c, "post", view)
}

func (h *PostHandler) votePost(c *fiber.Ctx) error {
	var payload dto.VoteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.VotePost(c.UserContext(), c.Params("postID"), payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		case errors.Is(err, service.ErrPostNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "post not found")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record vote")
		}
	}

	return utils.SendSuccess(c, "vote recorded", nil)
}

func (h *PostHandler) refreshSession(c *fiber.Ctx) {
	token := middleware.UserToken(c)
	if token == "" {
		return
	}
	if err := h.auth.RefreshToken(c.UserContext(), token); err != nil {
		h.logger.Warn().Err(err).Msg("failed to refresh session token")
		return
	}
	if cookie := c.Cookies(middleware.SessionCookieName); cookie != "" {
		c.Cookie(sessionCookie(h.cfg, cookie, int(h.cfg.SessionTTL.Seconds())))
	}
}
