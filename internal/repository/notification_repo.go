package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/models"
)

// NotificationRepository handles persistence for notification entities.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListByUser(ctx context.Context, userToken string) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userToken string) error
	CountUnread(ctx context.Context, userToken string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userToken string) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Where("user_token = ?", userToken).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAllRead flips every unread entry for one recipient; notifications are
// never updated individually.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userToken string) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_token = ? AND status = ?", userToken, models.NotificationUnread).
		UpdateColumn("status", models.NotificationRead).
		Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userToken string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_token = ? AND status = ?", userToken, models.NotificationUnread).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
