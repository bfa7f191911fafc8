package dto

import (
	"encoding/json"
	"time"

	"github.com/stackit-forum/stackit-api/internal/models"
)

// PostCreateRequest represents the payload used to submit a new post.
type PostCreateRequest struct {
	Title string       `json:"title" validate:"required,min=1,max=100"`
	Body  string       `json:"body" validate:"required,min=1,max=4000"`
	Tags  []models.Tag `json:"tags" validate:"required,min=1,dive"`
}

// FeedQuery carries the validated feed pagination parameters.
type FeedQuery struct {
	OrderByField string `query:"orderByField" validate:"required,oneof=upvotes comment_count downvotes timestamp"`
	LastDocID    string `query:"lastDocID" validate:"omitempty,len=6"`
	LimitTo      int    `query:"limitTo" validate:"required,min=1,max=10"`
}

// VoteRequest toggles one vote counter on a post or comment.
type VoteRequest struct {
	Field string `json:"field" validate:"required,oneof=upvotes downvotes"`
	Undo  bool   `json:"undo"`
}

// PostResponse is the serialized representation of a post.
type PostResponse struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Body             string       `json:"body"`
	Tags             []models.Tag `json:"tags"`
	Upvotes          int          `json:"upvotes"`
	Downvotes        int          `json:"downvotes"`
	CommentCount     int          `json:"comment_count"`
	ModerationStatus string       `json:"moderation_status"`
	Author           string       `json:"author,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
}

// NewPostResponse converts a model into a DTO.
func NewPostResponse(post models.Post) PostResponse {
	var tags []models.Tag
	if len(post.Tags) > 0 {
		_ = json.Unmarshal(post.Tags, &tags)
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	author := ""
	if post.Author != nil {
		author = *post.Author
	}

	return PostResponse{
		ID:               post.ID,
		Title:            post.Title,
		Body:             post.Body,
		Tags:             tags,
		Upvotes:          post.Upvotes,
		Downvotes:        post.Downvotes,
		CommentCount:     post.CommentCount,
		ModerationStatus: post.ModerationStatus,
		Author:           author,
		Timestamp:        post.CreatedAt,
	}
}

// NewPostResponseSlice converts a slice of models into DTOs.
func NewPostResponseSlice(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, NewPostResponse(post))
	}
	return out
}

// FeedResponse is one page of the post feed.
type FeedResponse struct {
	Items        []PostResponse `json:"items"`
	LastDocID    string         `json:"lastDocID,omitempty"`
	HasMore      bool           `json:"hasMore"`
	OrderByField string         `json:"orderByField"`
	Limit        int            `json:"limit"`
}

// PostViewResponse is a single post together with its rendered body and
// nested comment tree.
type PostViewResponse struct {
	Post         PostResponse  `json:"post"`
	RenderedBody string        `json:"rendered_body"`
	Slug         string        `json:"slug"`
	Comments     []*CommentNode `json:"comments"`
}
