package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/models"
)

// CommentRepository persists comments and keeps the owning post's
// comment_count in step with them.
type CommentRepository interface {
	CreateWithCount(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, postID, commentID string) (models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Vote(ctx context.Context, postID, commentID, field string, delta int) error
	SetModerationStatus(ctx context.Context, postID, commentID, status string) error
	MarkAccepted(ctx context.Context, postID, commentID string) error
	UnmarkAccepted(ctx context.Context, postID, commentID string) error
	ParentChain(ctx context.Context, postID string, parentID *string) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository constructs a GORM-backed repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// CreateWithCount inserts the comment and increments the owning post's
// comment_count in the same transaction, so the counter invariant holds
// even if either statement fails.
func (r *commentRepository) CreateWithCount(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *commentRepository) FindByID(ctx context.Context, postID, commentID string) (models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&comment).Error; err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// ListByPost returns every non-rejected comment of a post in insertion
// order; rejected comments are filtered here so the tree builder never
// sees them.
func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND moderation_status <> ?", postID, models.ModerationRejected).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) Vote(ctx context.Context, postID, commentID, field string, delta int) error {
	if field != "upvotes" && field != "downvotes" {
		return fmt.Errorf("invalid vote field %q", field)
	}

	query := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND post_id = ?", commentID, postID)
	if delta < 0 {
		query = query.Where(fmt.Sprintf("%s > 0", field))
	}

	result := query.UpdateColumn(field, gorm.Expr(fmt.Sprintf("%s + ?", field), delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// an undo bounced off the floor guard matches zero rows too, so
		// only report not-found when the comment itself is missing
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Comment{}).
			Where("id = ? AND post_id = ?", commentID, postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// SetModerationStatus transitions a comment and, when the transition newly
// rejects it, decrements the post counter inside the same transaction. A
// comment already rejected is left untouched so the counter can never be
// decremented twice for one comment.
func (r *commentRepository) SetModerationStatus(ctx context.Context, postID, commentID, status string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Where("id = ? AND post_id = ?", commentID, postID).
			First(&comment).Error; err != nil {
			return err
		}

		if comment.ModerationStatus == status {
			return nil
		}

		if err := tx.Model(&models.Comment{}).
			Where("id = ? AND post_id = ?", commentID, postID).
			UpdateColumn("moderation_status", status).Error; err != nil {
			return err
		}

		if status == models.ModerationRejected {
			return tx.Model(&models.Post{}).
				Where("id = ? AND comment_count > 0", postID).
				UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).
				Error
		}

		if comment.ModerationStatus == models.ModerationRejected {
			// un-rejecting restores the comment to the visible count
			return tx.Model(&models.Post{}).
				Where("id = ?", postID).
				UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).
				Error
		}

		return nil
	})
}

// MarkAccepted clears any previously accepted comment for the post before
// setting the target, inside one transaction, so no observer ever sees two
// accepted comments.
func (r *commentRepository) MarkAccepted(ctx context.Context, postID, commentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).
			Where("post_id = ? AND is_accepted = 1", postID).
			UpdateColumn("is_accepted", 0).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Comment{}).
			Where("id = ? AND post_id = ?", commentID, postID).
			UpdateColumn("is_accepted", 1)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *commentRepository) UnmarkAccepted(ctx context.Context, postID, commentID string) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND post_id = ?", commentID, postID).
		UpdateColumn("is_accepted", 0)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ParentChain walks parent links from parentID up to the thread root via
// point lookups, collecting ancestors that have an author. Ancestors
// without an author (or missing rows) are skipped but do not stop the walk.
func (r *commentRepository) ParentChain(ctx context.Context, postID string, parentID *string) ([]models.Comment, error) {
	var chain []models.Comment
	current := parentID

	for current != nil && *current != "" {
		var comment models.Comment
		err := r.db.WithContext(ctx).
			Where("id = ? AND post_id = ?", *current, postID).
			First(&comment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}

		if comment.Author != nil && *comment.Author != "" {
			chain = append(chain, comment)
		}
		current = comment.ParentID
	}

	return chain, nil
}
