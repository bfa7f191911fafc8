package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/models"
	"github.com/stackit-forum/stackit-api/internal/observability"
	"github.com/stackit-forum/stackit-api/internal/repository"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

// Post service sentinel errors.
var ErrPostNotFound = errors.New("post not found")

// PostService exposes post use-cases: submission, the paginated feed,
// voting, and the full post view with its comment thread.
type PostService interface {
	CreatePost(ctx context.Context, author string, payload dto.PostCreateRequest) (dto.PostResponse, string, error)
	Feed(ctx context.Context, query dto.FeedQuery) (dto.FeedResponse, error)
	GetPost(ctx context.Context, postID, sortBy string) (dto.PostViewResponse, error)
	VotePost(ctx context.Context, postID string, payload dto.VoteRequest) error
}

type postService struct {
	posts     repository.PostRepository
	comments  CommentService
	tokens    repository.TokenRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	markdown  goldmark.Markdown
	logger    zerolog.Logger
}

// NewPostService constructs a post service.
func NewPostService(
	posts repository.PostRepository,
	comments CommentService,
	tokens repository.TokenRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) PostService {
	return &postService{
		posts:     posts,
		comments:  comments,
		tokens:    tokens,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:    logger.With().Str("component", "post_service").Logger(),
	}
}

// CreatePost stores the submission in pending state and returns the post
// plus its URL slug.
func (s *postService) CreatePost(ctx context.Context, author string, payload dto.PostCreateRequest) (dto.PostResponse, string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, "", err
	}

	title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	if title == "" {
		return dto.PostResponse{}, "", errors.New("post title empty after sanitization")
	}

	tags, err := json.Marshal(payload.Tags)
	if err != nil {
		return dto.PostResponse{}, "", err
	}

	post := models.Post{
		ID:               utils.NewPostID(),
		Title:            title,
		Body:             payload.Body,
		Tags:             datatypes.JSON(tags),
		ModerationStatus: models.ModerationPending,
	}
	if author != "" {
		post.Author = &author
	}

	if err := s.posts.Create(ctx, &post); err != nil {
		return dto.PostResponse{}, "", err
	}

	observability.PostsCreated().Inc()
	s.logger.Info().Str("post_id", post.ID).Msg("post created")

	response := dto.NewPostResponse(post)
	response.Author = newDisplayNames(s.tokens).resolve(ctx, response.Author)
	return response, utils.PostSlug(post.ID, post.Title), nil
}

func (s *postService) Feed(ctx context.Context, query dto.FeedQuery) (dto.FeedResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.FeedResponse{}, err
	}

	page, err := s.posts.Feed(ctx, query.OrderByField, query.LastDocID, query.LimitTo)
	if err != nil {
		return dto.FeedResponse{}, err
	}

	items := dto.NewPostResponseSlice(page.Items)
	names := newDisplayNames(s.tokens)
	for i := range items {
		items[i].Author = names.resolve(ctx, items[i].Author)
	}

	return dto.FeedResponse{
		Items:        items,
		LastDocID:    page.LastDocID,
		HasMore:      page.HasMore,
		OrderByField: query.OrderByField,
		Limit:        query.LimitTo,
	}, nil
}

// GetPost returns the post with its body rendered to sanitized HTML and
// its comment forest ordered by sortBy.
func (s *postService) GetPost(ctx context.Context, postID, sortBy string) (dto.PostViewResponse, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostViewResponse{}, ErrPostNotFound
		}
		return dto.PostViewResponse{}, err
	}

	tree, err := s.comments.CommentTree(ctx, postID, sortBy)
	if err != nil {
		return dto.PostViewResponse{}, err
	}

	var rendered bytes.Buffer
	if err := s.markdown.Convert([]byte(post.Body), &rendered); err != nil {
		s.logger.Warn().Err(err).Str("post_id", postID).Msg("failed to render post body")
		rendered.Reset()
		rendered.WriteString(post.Body)
	}

	postResponse := dto.NewPostResponse(post)
	postResponse.Author = newDisplayNames(s.tokens).resolve(ctx, postResponse.Author)

	return dto.PostViewResponse{
		Post:         postResponse,
		RenderedBody: s.sanitizer.Sanitize(rendered.String()),
		Slug:         utils.PostSlug(post.ID, post.Title),
		Comments:     tree,
	}, nil
}

func (s *postService) VotePost(ctx context.Context, postID string, payload dto.VoteRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	delta := 1
	if payload.Undo {
		delta = -1
	}

	if err := s.posts.Vote(ctx, postID, payload.Field, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}
