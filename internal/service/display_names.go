package service

import (
	"context"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/repository"
)

// displayNames resolves author session tokens to usernames while building
// a response. Tokens stay server-side; clients only ever see display
// names. Lookups are memoized for the lifetime of one resolver, which is
// scoped to a single request.
type displayNames struct {
	tokens repository.TokenRepository
	cache  map[string]string
}

func newDisplayNames(tokens repository.TokenRepository) *displayNames {
	return &displayNames{tokens: tokens, cache: make(map[string]string)}
}

// resolve returns the username behind an author token, or "" for
// anonymous authors and revoked sessions.
func (d *displayNames) resolve(ctx context.Context, authorToken string) string {
	if authorToken == "" {
		return ""
	}
	if name, ok := d.cache[authorToken]; ok {
		return name
	}
	name := ""
	if row, err := d.tokens.FindByToken(ctx, authorToken); err == nil {
		name = row.Username
	}
	d.cache[authorToken] = name
	return name
}

// resolveTree rewrites every author field in a comment forest from token
// to display name, walking with an explicit stack so thread depth never
// becomes a recursion limit.
func (d *displayNames) resolveTree(ctx context.Context, roots []*dto.CommentNode) {
	stack := make([]*dto.CommentNode, len(roots))
	copy(stack, roots)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node.Author = d.resolve(ctx, node.Author)
		stack = append(stack, node.Replies...)
	}
}
