package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/stackit-forum/stackit-api/internal/models"
)

func gifJSON(t *testing.T, gif models.Gif) datatypes.JSON {
	t.Helper()
	encoded, err := json.Marshal(gif)
	require.NoError(t, err)
	return datatypes.JSON(encoded)
}

func TestFanOutNotifiesPostAuthorAndAncestors(t *testing.T) {
	posts := newPostRepoStub(models.Post{
		ID:     "p00001",
		Title:  "How do I center a div",
		Author: strPtr("alice"),
	})
	comments := newCommentRepoStub(
		models.Comment{ID: "c0000001", PostID: "p00001", Body: "use flexbox", Author: strPtr("bob"), Level: 0},
	)
	notifications := &notificationRepoStub{}

	engine := NewNotificationEngine(posts, comments, notifications, testLogger())

	reply := models.Comment{
		ID:       "c0000002",
		PostID:   "p00001",
		Body:     "grid works too and handles the vertical axis better",
		Author:   strPtr("carol"),
		ParentID: strPtr("c0000001"),
		Level:    1,
	}
	engine.FanOut(context.Background(), "p00001", reply)

	require.Len(t, notifications.created, 2)

	byUser := make(map[string]models.Notification)
	for _, n := range notifications.created {
		byUser[n.UserToken] = n
	}

	alice, ok := byUser["alice"]
	require.True(t, ok, "post author should be notified")
	require.Equal(t, "New comment on your post 'How do I center a di...'", alice.Title)
	require.Equal(t, models.NotificationUnread, alice.Status)

	bob, ok := byUser["bob"]
	require.True(t, ok, "parent comment author should be notified")
	require.Equal(t, "New reply on your comment 'use flexbox'", bob.Title)
	require.Equal(t, "grid works too and handles the vertical ...", bob.Description)

	require.Equal(t, "/post/How_do_I_center_a_di_p00001#c0000002", alice.Link)
	require.Equal(t, alice.Link, bob.Link)
}

func TestFanOutSkipsCommenterEverywhere(t *testing.T) {
	posts := newPostRepoStub(models.Post{ID: "p00001", Title: "topic", Author: strPtr("alice")})
	comments := newCommentRepoStub(
		models.Comment{ID: "c0000001", PostID: "p00001", Body: "first", Author: strPtr("alice"), Level: 0},
	)
	notifications := &notificationRepoStub{}
	engine := NewNotificationEngine(posts, comments, notifications, testLogger())

	// alice replies under her own post and her own comment
	engine.FanOut(context.Background(), "p00001", models.Comment{
		ID:       "c0000002",
		PostID:   "p00001",
		Body:     "following up",
		Author:   strPtr("alice"),
		ParentID: strPtr("c0000001"),
		Level:    1,
	})

	require.Empty(t, notifications.created)
}

func TestFanOutDeduplicatesAncestorAuthors(t *testing.T) {
	posts := newPostRepoStub(models.Post{ID: "p00001", Title: "topic", Author: strPtr("alice")})
	comments := newCommentRepoStub(
		models.Comment{ID: "c0000001", PostID: "p00001", Body: "one", Author: strPtr("bob"), Level: 0},
		models.Comment{ID: "c0000002", PostID: "p00001", Body: "two", Author: strPtr("alice"), ParentID: strPtr("c0000001"), Level: 1},
		models.Comment{ID: "c0000003", PostID: "p00001", Body: "three", Author: strPtr("bob"), ParentID: strPtr("c0000002"), Level: 2},
	)
	notifications := &notificationRepoStub{}
	engine := NewNotificationEngine(posts, comments, notifications, testLogger())

	engine.FanOut(context.Background(), "p00001", models.Comment{
		ID:       "c0000004",
		PostID:   "p00001",
		Body:     "four",
		Author:   strPtr("carol"),
		ParentID: strPtr("c0000003"),
		Level:    3,
	})

	// bob appears twice in the chain and alice is both post author and an
	// ancestor; each still gets exactly one notification
	require.Len(t, notifications.created, 2)

	counts := make(map[string]int)
	for _, n := range notifications.created {
		counts[n.UserToken]++
	}
	require.Equal(t, 1, counts["alice"])
	require.Equal(t, 1, counts["bob"])
}

func TestFanOutGifOnlyCommentUsesAltText(t *testing.T) {
	posts := newPostRepoStub(models.Post{ID: "p00001", Title: "topic", Author: strPtr("alice")})
	comments := newCommentRepoStub()
	notifications := &notificationRepoStub{}
	engine := NewNotificationEngine(posts, comments, notifications, testLogger())

	engine.FanOut(context.Background(), "p00001", models.Comment{
		ID:     "c0000001",
		PostID: "p00001",
		Gif:    gifJSON(t, models.Gif{Src: "https://example.com/a.gif", Alt: "thumbs up"}),
		Author: strPtr("bob"),
	})

	require.Len(t, notifications.created, 1)
	require.Equal(t, "thumbs up", notifications.created[0].Description)
}

func TestFanOutVanishedPostNotifiesNobody(t *testing.T) {
	engine := NewNotificationEngine(newPostRepoStub(), newCommentRepoStub(), &notificationRepoStub{}, testLogger())

	engine.FanOut(context.Background(), "p00001", models.Comment{
		ID:     "c0000001",
		PostID: "p00001",
		Body:   "hello",
		Author: strPtr("bob"),
	})
}

func TestFanOutAnonymousCommentNotifiesNobody(t *testing.T) {
	posts := newPostRepoStub(models.Post{ID: "p00001", Title: "topic", Author: strPtr("alice")})
	notifications := &notificationRepoStub{}
	engine := NewNotificationEngine(posts, newCommentRepoStub(), notifications, testLogger())

	engine.FanOut(context.Background(), "p00001", models.Comment{
		ID:     "c0000001",
		PostID: "p00001",
		Body:   "anonymous drive-by",
	})

	require.Empty(t, notifications.created)
}

func TestFanOutSkipsAuthorlessAncestors(t *testing.T) {
	posts := newPostRepoStub(models.Post{ID: "p00001", Title: "topic", Author: strPtr("alice")})
	comments := newCommentRepoStub(
		models.Comment{ID: "c0000001", PostID: "p00001", Body: "named root", Author: strPtr("bob"), Level: 0},
		models.Comment{ID: "c0000002", PostID: "p00001", Body: "anonymous middle", ParentID: strPtr("c0000001"), Level: 1},
	)
	notifications := &notificationRepoStub{}
	engine := NewNotificationEngine(posts, comments, notifications, testLogger())

	engine.FanOut(context.Background(), "p00001", models.Comment{
		ID:       "c0000003",
		PostID:   "p00001",
		Body:     "reply under the anonymous one",
		Author:   strPtr("carol"),
		ParentID: strPtr("c0000002"),
		Level:    2,
	})

	// the walk continues past the authorless ancestor up to bob
	users := make([]string, 0, len(notifications.created))
	for _, n := range notifications.created {
		users = append(users, n.UserToken)
	}
	require.ElementsMatch(t, []string{"alice", "bob"}, users)
}

func TestFanOutStoreFailureIsSwallowed(t *testing.T) {
	posts := newPostRepoStub(models.Post{ID: "p00001", Title: "topic", Author: strPtr("alice")})
	notifications := &notificationRepoStub{err: context.DeadlineExceeded}
	engine := NewNotificationEngine(posts, newCommentRepoStub(), notifications, testLogger())

	engine.FanOut(context.Background(), "p00001", models.Comment{
		ID:     "c0000001",
		PostID: "p00001",
		Body:   "hello",
		Author: strPtr("bob"),
	})

	require.Empty(t, notifications.created)
}
