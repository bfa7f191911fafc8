package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stackit-forum/stackit-api/internal/models"
	"github.com/stackit-forum/stackit-api/internal/observability"
	"github.com/stackit-forum/stackit-api/internal/repository"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

const (
	titleExcerptLength       = 20
	descriptionExcerptLength = 40
)

// NotificationEngine fans notifications out to the users affected by a new
// comment: the post author and every distinct ancestor author in the reply
// chain, never the commenter themselves.
type NotificationEngine struct {
	posts         repository.PostRepository
	comments      repository.CommentRepository
	notifications repository.NotificationRepository
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewNotificationEngine constructs the fan-out engine.
func NewNotificationEngine(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	notifications repository.NotificationRepository,
	logger zerolog.Logger,
) *NotificationEngine {
	return &NotificationEngine{
		posts:         posts,
		comments:      comments,
		notifications: notifications,
		logger:        logger.With().Str("component", "notification_engine").Logger(),
		tracer:        otel.Tracer("github.com/stackit-forum/stackit-api/internal/service/notifications"),
	}
}

// FanOut computes and persists the notifications triggered by newComment.
// Delivery is best-effort: every failure is logged and swallowed, so a
// broken fan-out can never abort the comment that triggered it.
func (e *NotificationEngine) FanOut(ctx context.Context, postID string, newComment models.Comment) {
	spanCtx, span := e.tracer.Start(ctx, "notifications.fanout", trace.WithAttributes(
		attribute.String("post.id", postID),
		attribute.String("comment.id", newComment.ID),
	))
	defer span.End()

	notifications, err := e.collect(spanCtx, postID, newComment)
	if err != nil {
		span.RecordError(err)
		e.logger.Warn().Err(err).Str("post_id", postID).Msg("failed to compute notification recipients")
		return
	}
	if len(notifications) == 0 {
		return
	}

	if err := e.notifications.CreateBatch(spanCtx, notifications); err != nil {
		span.RecordError(err)
		e.logger.Warn().Err(err).Str("post_id", postID).Msg("failed to persist notifications")
		return
	}

	observability.NotificationsSent().WithLabelValues("comment").Add(float64(len(notifications)))
}

func (e *NotificationEngine) collect(ctx context.Context, postID string, newComment models.Comment) ([]models.Notification, error) {
	if newComment.Author == nil || *newComment.Author == "" {
		return nil, nil
	}
	commenter := *newComment.Author

	post, err := e.posts.FindByID(ctx, postID)
	if err != nil {
		// a comment on a vanished post notifies nobody
		return nil, nil
	}

	link := fmt.Sprintf("/post/%s#%s", utils.PostSlug(post.ID, post.Title), newComment.ID)
	description := utils.TrimToLength(commentContent(newComment), descriptionExcerptLength)

	notified := make(map[string]struct{})
	var notifications []models.Notification

	if post.Author != nil && *post.Author != "" && *post.Author != commenter {
		notified[*post.Author] = struct{}{}
		notifications = append(notifications, models.Notification{
			UserToken:   *post.Author,
			Title:       fmt.Sprintf("New comment on your post '%s'", utils.TrimToLength(post.Title, titleExcerptLength)),
			Description: description,
			Link:        link,
			Status:      models.NotificationUnread,
		})
	}

	if newComment.Level > 0 {
		ancestors, err := e.comments.ParentChain(ctx, postID, newComment.ParentID)
		if err != nil {
			return nil, err
		}

		for _, ancestor := range ancestors {
			author := *ancestor.Author
			if author == commenter {
				continue
			}
			if _, seen := notified[author]; seen {
				continue
			}

			notified[author] = struct{}{}
			notifications = append(notifications, models.Notification{
				UserToken:   author,
				Title:       fmt.Sprintf("New reply on your comment '%s'", utils.TrimToLength(commentContent(ancestor), titleExcerptLength)),
				Description: description,
				Link:        link,
				Status:      models.NotificationUnread,
			})
		}
	}

	return notifications, nil
}

// commentContent returns the comment body, falling back to the gif's alt
// text for gif-only comments.
func commentContent(comment models.Comment) string {
	if comment.Body != "" {
		return comment.Body
	}
	if len(comment.Gif) > 0 {
		var gif models.Gif
		if err := json.Unmarshal(comment.Gif, &gif); err == nil {
			return gif.Alt
		}
	}
	return ""
}
