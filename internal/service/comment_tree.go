package service

import (
	"sort"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/models"
)

// Comment sort orders accepted by the tree builder. The same comparator is
// applied at every depth of the tree, not just to the roots.
const (
	SortByUpvotes   = "upvotes"
	SortByDownvotes = "downvotes"
	SortByOldest    = "oldest"
	SortByNewest    = "newest"
	SortByReplies   = "replies"
)

// BuildCommentTree converts a flat comment list into a forest of reply
// trees. A reply whose parent is absent from the input is dropped; the
// store already filtered rejected comments, so an orphan means its parent
// was rejected.
func BuildCommentTree(comments []models.Comment) []*dto.CommentNode {
	nodes := make(map[string]*dto.CommentNode, len(comments))
	for _, comment := range comments {
		nodes[comment.ID] = &dto.CommentNode{
			CommentResponse: dto.NewCommentResponse(comment),
			Replies:         []*dto.CommentNode{},
		}
	}

	roots := make([]*dto.CommentNode, 0, len(comments))
	for _, comment := range comments {
		node := nodes[comment.ID]
		if comment.ParentID == nil || *comment.ParentID == "" {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*comment.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}

	return roots
}

// SortCommentTree orders the forest with the named comparator, applied to
// the roots and then to every replies list. The traversal uses an explicit
// stack so depth is bounded by memory, not the goroutine stack.
func SortCommentTree(roots []*dto.CommentNode, sortBy string) {
	less := comparatorFor(sortBy)

	stack := [][]*dto.CommentNode{roots}
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sort.SliceStable(level, func(i, j int) bool {
			return less(level[i], level[j])
		})

		for _, node := range level {
			if len(node.Replies) > 0 {
				stack = append(stack, node.Replies)
			}
		}
	}
}

func comparatorFor(sortBy string) func(a, b *dto.CommentNode) bool {
	switch sortBy {
	case SortByDownvotes:
		return func(a, b *dto.CommentNode) bool { return a.Downvotes > b.Downvotes }
	case SortByOldest:
		return func(a, b *dto.CommentNode) bool { return a.Timestamp.Before(b.Timestamp) }
	case SortByNewest:
		return func(a, b *dto.CommentNode) bool { return a.Timestamp.After(b.Timestamp) }
	case SortByReplies:
		return func(a, b *dto.CommentNode) bool { return len(a.Replies) > len(b.Replies) }
	default:
		return func(a, b *dto.CommentNode) bool { return a.Upvotes > b.Upvotes }
	}
}
