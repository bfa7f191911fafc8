package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/models"
)

// Feed order columns accepted by the post feed query.
var feedOrderColumns = map[string]string{
	"upvotes":       "upvotes",
	"downvotes":     "downvotes",
	"comment_count": "comment_count",
	"timestamp":     "created_at",
}

// FeedPage is one page of posts plus the cursor for the next one.
type FeedPage struct {
	Items     []models.Post
	LastDocID string
	HasMore   bool
}

// PostRepository persists posts and serves the paginated feed.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (models.Post, error)
	Feed(ctx context.Context, orderByField, lastDocID string, limit int) (FeedPage, error)
	Vote(ctx context.Context, postID, field string, delta int) error
	UpdateModerationStatus(ctx context.Context, postID, status string) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository constructs a GORM-backed repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id string) (models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Feed returns non-rejected posts in descending order of the requested
// column. One extra row is fetched to detect whether another page exists;
// lastDocID resumes after the named post's sort position.
func (r *postRepository) Feed(ctx context.Context, orderByField, lastDocID string, limit int) (FeedPage, error) {
	column, ok := feedOrderColumns[orderByField]
	if !ok {
		column = "created_at"
	}
	if limit <= 0 || limit > 10 {
		limit = 10
	}

	query := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("moderation_status <> ?", models.ModerationRejected).
		Order(fmt.Sprintf("%s DESC, id DESC", column)).
		Limit(limit + 1)

	if lastDocID != "" {
		var cursor models.Post
		if err := r.db.WithContext(ctx).First(&cursor, "id = ?", lastDocID).Error; err == nil {
			value := cursorValue(cursor, column)
			query = query.Where(
				fmt.Sprintf("(%s < ?) OR (%s = ? AND id < ?)", column, column),
				value, value, cursor.ID,
			)
		}
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return FeedPage{}, err
	}

	page := FeedPage{HasMore: len(posts) > limit}
	if page.HasMore {
		posts = posts[:limit]
	}
	page.Items = posts
	if page.HasMore && len(posts) > 0 {
		page.LastDocID = posts[len(posts)-1].ID
	}

	return page, nil
}

// Vote adjusts one counter in place so concurrent votes never race through
// a read-modify-write. The floor guard keeps counters non-negative on undo.
func (r *postRepository) Vote(ctx context.Context, postID, field string, delta int) error {
	if field != "upvotes" && field != "downvotes" {
		return fmt.Errorf("invalid vote field %q", field)
	}

	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID)
	if delta < 0 {
		result = result.Where(fmt.Sprintf("%s > 0", field))
	}

	update := result.UpdateColumn(field, gorm.Expr(fmt.Sprintf("%s + ?", field), delta))
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		// an undo bounced off the floor guard matches zero rows too, so
		// only report not-found when the post itself is missing
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Post{}).
			Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *postRepository) UpdateModerationStatus(ctx context.Context, postID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("moderation_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func cursorValue(post models.Post, column string) interface{} {
	switch column {
	case "upvotes":
		return post.Upvotes
	case "downvotes":
		return post.Downvotes
	case "comment_count":
		return post.CommentCount
	default:
		return post.CreatedAt
	}
}
