package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/middleware"
	"github.com/stackit-forum/stackit-api/internal/service"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

// CommentHandler provides HTTP endpoints for comments under a post.
type CommentHandler struct {
	service service.CommentService
	logger  zerolog.Logger
}

// NewCommentHandler constructs a handler instance.
func NewCommentHandler(service service.CommentService, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		logger:  logger.With().Str("component", "comment_handler").Logger(),
	}
}

// Register binds the comment routes under /posts/:postID.
func (h *CommentHandler) Register(router fiber.Router) {
	router.Post("/:postID/comments", h.createComment)
	router.Post("/:postID/comments/:commentID/vote", h.voteComment)
	router.Put("/:postID/comments/:commentID/accepted", h.markAccepted)
	router.Delete("/:postID/comments/:commentID/accepted", h.unmarkAccepted)
}

func (h *CommentHandler) createComment(c *fiber.Ctx) error {
	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	comment, err := h.service.CreateComment(c.UserContext(), c.Params("postID"), middleware.UserToken(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		case errors.Is(err, service.ErrPostNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "post not found")
		case errors.Is(err, service.ErrCommentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "parent comment not found")
		case errors.Is(err, service.ErrCommentEmpty):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create comment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment created", comment)
}

func (h *CommentHandler) voteComment(c *fiber.Ctx) error {
	var payload dto.VoteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	err := h.service.VoteComment(c.UserContext(), c.Params("postID"), c.Params("commentID"), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		case errors.Is(err, service.ErrCommentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "comment not found")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record vote")
		}
	}

	return utils.SendSuccess(c, "vote recorded", nil)
}

func (h *CommentHandler) markAccepted(c *fiber.Ctx) error {
	return h.setAccepted(c, h.service.MarkAccepted, "answer accepted")
}

func (h *CommentHandler) unmarkAccepted(c *fiber.Ctx) error {
	return h.setAccepted(c, h.service.UnmarkAccepted, "answer unaccepted")
}

func (h *CommentHandler) setAccepted(c *fiber.Ctx, apply func(ctx context.Context, postID, commentID, caller string) error, message string) error {
	err := apply(c.UserContext(), c.Params("postID"), c.Params("commentID"), middleware.UserToken(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendFieldErrors(c, fiber.StatusBadRequest, "invalid payload", fieldErrors(err))
		case errors.Is(err, service.ErrPostNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "post not found")
		case errors.Is(err, service.ErrCommentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "comment not found")
		case errors.Is(err, service.ErrNotPostAuthor):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update accepted answer")
		}
	}

	return utils.SendSuccess(c, message, nil)
}
