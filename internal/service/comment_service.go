package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/models"
	"github.com/stackit-forum/stackit-api/internal/observability"
	"github.com/stackit-forum/stackit-api/internal/repository"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

// Comment service sentinel errors.
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentEmpty    = errors.New("comment needs a body or a gif")
	ErrNotPostAuthor   = errors.New("only the post author may change the accepted answer")
)

// CommentService exposes comment use-cases: creation with notification
// fan-out, voting, the accepted-answer flag, and the nested thread view.
type CommentService interface {
	CreateComment(ctx context.Context, postID, author string, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
	VoteComment(ctx context.Context, postID, commentID string, payload dto.VoteRequest) error
	MarkAccepted(ctx context.Context, postID, commentID, caller string) error
	UnmarkAccepted(ctx context.Context, postID, commentID, caller string) error
	CommentTree(ctx context.Context, postID, sortBy string) ([]*dto.CommentNode, error)
}

type commentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	tokens    repository.TokenRepository
	engine    *NotificationEngine
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewCommentService constructs a comment service.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	tokens repository.TokenRepository,
	engine *NotificationEngine,
	validate *validator.Validate,
	logger zerolog.Logger,
) CommentService {
	return &commentService{
		comments:  comments,
		posts:     posts,
		tokens:    tokens,
		engine:    engine,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "comment_service").Logger(),
		tracer:    otel.Tracer("github.com/stackit-forum/stackit-api/internal/service/comments"),
	}
}

// CreateComment inserts the comment transactionally with the owning post's
// counter, then fans notifications out. Fan-out failures never surface to
// the caller.
func (s *commentService) CreateComment(ctx context.Context, postID, author string, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if body == "" && payload.Gif == nil {
		return dto.CommentResponse{}, ErrCommentEmpty
	}

	spanCtx, span := s.tracer.Start(ctx, "comments.create", trace.WithAttributes(
		attribute.String("post.id", postID),
	))
	defer span.End()

	if _, err := s.posts.FindByID(spanCtx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentResponse{}, ErrPostNotFound
		}
		return dto.CommentResponse{}, err
	}

	level := 0
	var parentID *string
	if payload.ParentID != "" {
		parent, err := s.comments.FindByID(spanCtx, postID, payload.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.CommentResponse{}, ErrCommentNotFound
			}
			return dto.CommentResponse{}, err
		}
		level = parent.Level + 1
		parentID = &parent.ID
	}

	comment := models.Comment{
		ID:               utils.NewCommentID(),
		PostID:           postID,
		Body:             body,
		ParentID:         parentID,
		Level:            level,
		ModerationStatus: models.ModerationPending,
	}
	if author != "" {
		comment.Author = &author
	}
	if payload.Gif != nil {
		encoded, err := json.Marshal(payload.Gif)
		if err != nil {
			return dto.CommentResponse{}, err
		}
		comment.Gif = datatypes.JSON(encoded)
	}

	if err := s.comments.CreateWithCount(spanCtx, &comment); err != nil {
		span.RecordError(err)
		return dto.CommentResponse{}, err
	}

	observability.CommentsCreated().Inc()
	s.logger.Info().Str("comment_id", comment.ID).Str("post_id", postID).Int("level", level).Msg("comment created")

	s.engine.FanOut(spanCtx, postID, comment)

	response := dto.NewCommentResponse(comment)
	response.Author = newDisplayNames(s.tokens).resolve(spanCtx, response.Author)
	return response, nil
}

func (s *commentService) VoteComment(ctx context.Context, postID, commentID string, payload dto.VoteRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	delta := 1
	if payload.Undo {
		delta = -1
	}

	if err := s.comments.Vote(ctx, postID, commentID, payload.Field, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

// MarkAccepted verifies the caller owns the post, then atomically clears
// the previous accepted answer and sets the new one.
func (s *commentService) MarkAccepted(ctx context.Context, postID, commentID, caller string) error {
	if err := s.authorizeAccept(ctx, postID, caller); err != nil {
		return err
	}

	if _, err := s.comments.FindByID(ctx, postID, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	return s.comments.MarkAccepted(ctx, postID, commentID)
}

func (s *commentService) UnmarkAccepted(ctx context.Context, postID, commentID, caller string) error {
	if err := s.authorizeAccept(ctx, postID, caller); err != nil {
		return err
	}

	if err := s.comments.UnmarkAccepted(ctx, postID, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

func (s *commentService) CommentTree(ctx context.Context, postID, sortBy string) ([]*dto.CommentNode, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	roots := BuildCommentTree(comments)
	SortCommentTree(roots, sortBy)
	newDisplayNames(s.tokens).resolveTree(ctx, roots)
	return roots, nil
}

func (s *commentService) authorizeAccept(ctx context.Context, postID, caller string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if caller == "" || post.Author == nil || *post.Author != caller {
		return ErrNotPostAuthor
	}
	return nil
}
