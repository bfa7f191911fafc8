package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/models"
	"github.com/stackit-forum/stackit-api/internal/observability"
	"github.com/stackit-forum/stackit-api/internal/repository"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

// NotificationService serves the per-user inbox and admin broadcasts.
type NotificationService interface {
	ListAndMarkRead(ctx context.Context, userToken string) ([]dto.NotificationResponse, error)
	Broadcast(ctx context.Context, payload dto.BroadcastRequest) (int, error)
}

type notificationService struct {
	notifications repository.NotificationRepository
	tokens        repository.TokenRepository
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	now           func() time.Time
}

// NewNotificationService constructs a notification service.
func NewNotificationService(
	notifications repository.NotificationRepository,
	tokens repository.TokenRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		tokens:        tokens,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "notification_service").Logger(),
		now:           time.Now,
	}
}

// ListAndMarkRead returns the caller's notifications newest first with
// relative timestamps, then flips them all to read. A failed mark-read is
// logged but does not fail the listing.
func (s *notificationService) ListAndMarkRead(ctx context.Context, userToken string) ([]dto.NotificationResponse, error) {
	notifications, err := s.notifications.ListByUser(ctx, userToken)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, dto.NewNotificationResponse(n, utils.AgoDuration(n.CreatedAt, now)))
	}

	if err := s.notifications.MarkAllRead(ctx, userToken); err != nil {
		s.logger.Warn().Err(err).Msg("failed to mark notifications read")
	}

	return out, nil
}

// Broadcast fans one notification out to every known session token and
// returns the recipient count.
func (s *notificationService) Broadcast(ctx context.Context, payload dto.BroadcastRequest) (int, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}

	tokens, err := s.tokens.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	title := s.sanitizer.Sanitize(payload.Title)
	body := s.sanitizer.Sanitize(payload.Body)

	notifications := make([]models.Notification, 0, len(tokens))
	for _, token := range tokens {
		notifications = append(notifications, models.Notification{
			UserToken:   token.Token,
			Title:       title,
			Description: body,
			Link:        payload.Link,
			Status:      models.NotificationUnread,
		})
	}

	if err := s.notifications.CreateBatch(ctx, notifications); err != nil {
		return 0, err
	}

	observability.NotificationsSent().WithLabelValues("broadcast").Add(float64(len(notifications)))
	s.logger.Info().Int("recipients", len(notifications)).Msg("broadcast notification sent")

	return len(notifications), nil
}
