package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/models"
)

func seedPost(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Post{
		ID:               id,
		Title:            "seed",
		Body:             "seed body",
		ModerationStatus: models.ModerationApproved,
	}).Error)
}

func postCommentCount(t *testing.T, db *gorm.DB, postID string) int {
	t.Helper()
	var post models.Post
	require.NoError(t, db.First(&post, "id = ?", postID).Error)
	return post.CommentCount
}

func TestCreateWithCountIncrementsPostCounter(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	repo := NewCommentRepository(db)
	seedPost(t, db, "p00001")

	require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000001", PostID: "p00001", Body: "first",
	}))
	require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000002", PostID: "p00001", Body: "second",
	}))

	require.Equal(t, 2, postCommentCount(t, db, "p00001"))
}

func TestCreateWithCountMissingPostRollsBack(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	repo := NewCommentRepository(db)

	err := repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000001", PostID: "nosuch", Body: "orphan",
	})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	require.Zero(t, count, "comment insert must roll back with the counter update")
}

func TestSetModerationStatusRejectDecrementsOnce(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	repo := NewCommentRepository(db)
	seedPost(t, db, "p00001")

	require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000001", PostID: "p00001", Body: "target",
	}))
	require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000002", PostID: "p00001", Body: "bystander",
	}))
	require.Equal(t, 2, postCommentCount(t, db, "p00001"))

	require.NoError(t, repo.SetModerationStatus(context.Background(), "p00001", "c0000001", models.ModerationRejected))
	require.Equal(t, 1, postCommentCount(t, db, "p00001"))

	// rejecting an already-rejected comment is a no-op
	require.NoError(t, repo.SetModerationStatus(context.Background(), "p00001", "c0000001", models.ModerationRejected))
	require.Equal(t, 1, postCommentCount(t, db, "p00001"))

	// un-rejecting restores the counter
	require.NoError(t, repo.SetModerationStatus(context.Background(), "p00001", "c0000001", models.ModerationApproved))
	require.Equal(t, 2, postCommentCount(t, db, "p00001"))
}

func TestListByPostFiltersRejected(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	repo := NewCommentRepository(db)
	seedPost(t, db, "p00001")

	require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000001", PostID: "p00001", Body: "visible",
	}))
	require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000002", PostID: "p00001", Body: "hidden",
	}))
	require.NoError(t, repo.SetModerationStatus(context.Background(), "p00001", "c0000002", models.ModerationRejected))

	comments, err := repo.ListByPost(context.Background(), "p00001")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "c0000001", comments[0].ID)
}

func TestMarkAcceptedClearsPrevious(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	repo := NewCommentRepository(db)
	seedPost(t, db, "p00001")

	require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000001", PostID: "p00001", Body: "first answer",
	}))
	require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000002", PostID: "p00001", Body: "better answer",
	}))

	require.NoError(t, repo.MarkAccepted(context.Background(), "p00001", "c0000001"))
	require.NoError(t, repo.MarkAccepted(context.Background(), "p00001", "c0000002"))

	var accepted []models.Comment
	require.NoError(t, db.Where("post_id = ? AND is_accepted = 1", "p00001").Find(&accepted).Error)
	require.Len(t, accepted, 1, "at most one accepted answer per post")
	require.Equal(t, "c0000002", accepted[0].ID)
}

func TestMarkAcceptedConcurrentCallsKeepSingleWinner(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one writer at a time so the clear-then-set transactions interleave
	// through the pool instead of tripping sqlite's single-writer lock
	sqlDB.SetMaxOpenConns(1)

	repo := NewCommentRepository(db)
	seedPost(t, db, "p00001")

	candidates := make([]string, 6)
	for i := range candidates {
		candidates[i] = fmt.Sprintf("c000000%d", i+1)
		require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
			ID: candidates[i], PostID: "p00001", Body: "an answer",
		}))
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 5*len(candidates))
	for round := 0; round < 5; round++ {
		for _, id := range candidates {
			wg.Add(1)
			go func(commentID string, unmark bool) {
				defer wg.Done()
				if unmark {
					_ = repo.UnmarkAccepted(context.Background(), "p00001", commentID)
					return
				}
				errCh <- repo.MarkAccepted(context.Background(), "p00001", commentID)
			}(id, round%2 == 1)
		}
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	var accepted []models.Comment
	require.NoError(t, db.Where("post_id = ? AND is_accepted = 1", "p00001").Find(&accepted).Error)
	require.LessOrEqual(t, len(accepted), 1, "concurrent marks must never leave two accepted answers")
	if len(accepted) == 1 {
		require.Contains(t, candidates, accepted[0].ID)
	}
}

func TestMarkAcceptedUnknownComment(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	repo := NewCommentRepository(db)
	seedPost(t, db, "p00001")

	err := repo.MarkAccepted(context.Background(), "p00001", "nosuch01")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommentVoteFloor(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	repo := NewCommentRepository(db)
	seedPost(t, db, "p00001")

	require.NoError(t, repo.CreateWithCount(context.Background(), &models.Comment{
		ID: "c0000001", PostID: "p00001", Body: "comment",
	}))

	require.NoError(t, repo.Vote(context.Background(), "p00001", "c0000001", "upvotes", 1))
	require.NoError(t, repo.Vote(context.Background(), "p00001", "c0000001", "upvotes", -1))
	// an undo with nothing to undo leaves the counter at zero
	require.NoError(t, repo.Vote(context.Background(), "p00001", "c0000001", "upvotes", -1))

	comment, err := repo.FindByID(context.Background(), "p00001", "c0000001")
	require.NoError(t, err)
	require.Zero(t, comment.Upvotes)

	// a floored undo succeeds, but an undo against a missing comment does not
	require.ErrorIs(t, repo.Vote(context.Background(), "p00001", "nosuch01", "upvotes", -1), gorm.ErrRecordNotFound)
}

func TestParentChainWalk(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	repo := NewCommentRepository(db)
	seedPost(t, db, "p00001")

	root := models.Comment{ID: "c0000001", PostID: "p00001", Body: "root", Author: strPtr("alice")}
	middle := models.Comment{ID: "c0000002", PostID: "p00001", Body: "anonymous", ParentID: strPtr("c0000001"), Level: 1}
	leaf := models.Comment{ID: "c0000003", PostID: "p00001", Body: "leaf", Author: strPtr("bob"), ParentID: strPtr("c0000002"), Level: 2}
	for _, c := range []models.Comment{root, middle, leaf} {
		comment := c
		require.NoError(t, repo.CreateWithCount(context.Background(), &comment))
	}

	chain, err := repo.ParentChain(context.Background(), "p00001", strPtr("c0000003"))
	require.NoError(t, err)
	// the authorless middle comment is skipped but the walk continues
	require.Len(t, chain, 2)
	require.Equal(t, "c0000003", chain[0].ID)
	require.Equal(t, "c0000001", chain[1].ID)
}

func TestParentChainBreaksOnMissingRow(t *testing.T) {
	db := setupTestDB(t, &models.Post{}, &models.Comment{})
	repo := NewCommentRepository(db)
	seedPost(t, db, "p00001")

	orphan := models.Comment{ID: "c0000001", PostID: "p00001", Body: "orphan", Author: strPtr("alice"), ParentID: strPtr("gone0000"), Level: 1}
	require.NoError(t, repo.CreateWithCount(context.Background(), &orphan))

	chain, err := repo.ParentChain(context.Background(), "p00001", strPtr("c0000001"))
	require.NoError(t, err)
	require.Len(t, chain, 1)
	require.Equal(t, "c0000001", chain[0].ID)
}
