package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/models"
	"github.com/stackit-forum/stackit-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// postRepoStub keeps posts in a map; only the methods a test exercises
// need meaningful behavior.
type postRepoStub struct {
	posts map[string]models.Post
}

func newPostRepoStub(posts ...models.Post) *postRepoStub {
	stub := &postRepoStub{posts: make(map[string]models.Post)}
	for _, post := range posts {
		stub.posts[post.ID] = post
	}
	return stub
}

func (s *postRepoStub) Create(_ context.Context, post *models.Post) error {
	s.posts[post.ID] = *post
	return nil
}

func (s *postRepoStub) FindByID(_ context.Context, id string) (models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, gorm.ErrRecordNotFound
	}
	return post, nil
}

func (s *postRepoStub) Feed(_ context.Context, _, _ string, _ int) (repository.FeedPage, error) {
	page := repository.FeedPage{}
	for _, post := range s.posts {
		page.Items = append(page.Items, post)
	}
	return page, nil
}

func (s *postRepoStub) Vote(_ context.Context, postID, field string, delta int) error {
	post, ok := s.posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if field == "upvotes" {
		post.Upvotes += delta
	} else {
		post.Downvotes += delta
	}
	s.posts[postID] = post
	return nil
}

func (s *postRepoStub) UpdateModerationStatus(_ context.Context, postID, status string) error {
	post, ok := s.posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	post.ModerationStatus = status
	s.posts[postID] = post
	return nil
}

// commentRepoStub mirrors the repository contract over an in-memory map.
type commentRepoStub struct {
	comments map[string]models.Comment
}

func newCommentRepoStub(comments ...models.Comment) *commentRepoStub {
	stub := &commentRepoStub{comments: make(map[string]models.Comment)}
	for _, comment := range comments {
		stub.comments[comment.ID] = comment
	}
	return stub
}

func (s *commentRepoStub) CreateWithCount(_ context.Context, comment *models.Comment) error {
	s.comments[comment.ID] = *comment
	return nil
}

func (s *commentRepoStub) FindByID(_ context.Context, postID, commentID string) (models.Comment, error) {
	comment, ok := s.comments[commentID]
	if !ok || comment.PostID != postID {
		return models.Comment{}, gorm.ErrRecordNotFound
	}
	return comment, nil
}

func (s *commentRepoStub) ListByPost(_ context.Context, postID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, comment := range s.comments {
		if comment.PostID == postID && comment.ModerationStatus != models.ModerationRejected {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (s *commentRepoStub) Vote(_ context.Context, postID, commentID, field string, delta int) error {
	comment, err := s.FindByID(context.Background(), postID, commentID)
	if err != nil {
		return err
	}
	if field == "upvotes" {
		comment.Upvotes += delta
	} else {
		comment.Downvotes += delta
	}
	s.comments[commentID] = comment
	return nil
}

func (s *commentRepoStub) SetModerationStatus(_ context.Context, postID, commentID, status string) error {
	comment, err := s.FindByID(context.Background(), postID, commentID)
	if err != nil {
		return err
	}
	comment.ModerationStatus = status
	s.comments[commentID] = comment
	return nil
}

func (s *commentRepoStub) MarkAccepted(_ context.Context, postID, commentID string) error {
	for id, comment := range s.comments {
		if comment.PostID == postID && comment.IsAccepted == 1 {
			comment.IsAccepted = 0
			s.comments[id] = comment
		}
	}
	comment, err := s.FindByID(context.Background(), postID, commentID)
	if err != nil {
		return err
	}
	comment.IsAccepted = 1
	s.comments[commentID] = comment
	return nil
}

func (s *commentRepoStub) UnmarkAccepted(_ context.Context, postID, commentID string) error {
	comment, err := s.FindByID(context.Background(), postID, commentID)
	if err != nil {
		return err
	}
	comment.IsAccepted = 0
	s.comments[commentID] = comment
	return nil
}

func (s *commentRepoStub) ParentChain(_ context.Context, postID string, parentID *string) ([]models.Comment, error) {
	var chain []models.Comment
	current := parentID
	for current != nil && *current != "" {
		comment, ok := s.comments[*current]
		if !ok || comment.PostID != postID {
			break
		}
		if comment.Author != nil && *comment.Author != "" {
			chain = append(chain, comment)
		}
		current = comment.ParentID
	}
	return chain, nil
}

// notificationRepoStub records created notifications for assertions.
type notificationRepoStub struct {
	created []models.Notification
	err     error
}

func (s *notificationRepoStub) CreateBatch(_ context.Context, notifications []models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, notifications...)
	return nil
}

func (s *notificationRepoStub) ListByUser(_ context.Context, userToken string) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(s.created) - 1; i >= 0; i-- {
		if s.created[i].UserToken == userToken {
			out = append(out, s.created[i])
		}
	}
	return out, nil
}

func (s *notificationRepoStub) MarkAllRead(_ context.Context, userToken string) error {
	for i := range s.created {
		if s.created[i].UserToken == userToken {
			s.created[i].Status = models.NotificationRead
		}
	}
	return nil
}

func (s *notificationRepoStub) CountUnread(_ context.Context, userToken string) (int64, error) {
	var count int64
	for _, notification := range s.created {
		if notification.UserToken == userToken && notification.Status == models.NotificationUnread {
			count++
		}
	}
	return count, nil
}

func strPtr(s string) *string { return &s }

func atTime(offset time.Duration) time.Time {
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	return base.Add(offset)
}
