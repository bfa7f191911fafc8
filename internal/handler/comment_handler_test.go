package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/handler"
	"github.com/stackit-forum/stackit-api/internal/models"
	"github.com/stackit-forum/stackit-api/internal/service"
)

func newCommentTestApp(svc *mockCommentService, username string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/posts", sessionLocals("tok-1", models.RoleUser, username))
	handler.NewCommentHandler(svc, testLogger()).Register(group)
	return app
}

func TestCommentHandler_Create(t *testing.T) {
	svc := &mockCommentService{created: dto.CommentResponse{ID: "c0000001", PostID: "p00001", Body: "answer"}}
	app := newCommentTestApp(svc, "alice")

	body, err := json.Marshal(dto.CommentCreateRequest{Body: "answer"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/p00001/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "tok-1", svc.author, "comments are authored by session token, not display name")
}

func TestCommentHandler_CreateEmpty(t *testing.T) {
	svc := &mockCommentService{createErr: service.ErrCommentEmpty}
	app := newCommentTestApp(svc, "alice")

	body, err := json.Marshal(dto.CommentCreateRequest{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/p00001/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCommentHandler_AcceptForbiddenForNonAuthor(t *testing.T) {
	svc := &mockCommentService{acceptErr: service.ErrNotPostAuthor}
	app := newCommentTestApp(svc, "mallory")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/posts/p00001/comments/c0000001/accepted", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "tok-1", svc.caller, "the session token is the authorization subject")
}

func TestCommentHandler_UnmarkAccepted(t *testing.T) {
	svc := &mockCommentService{}
	app := newCommentTestApp(svc, "alice")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/posts/p00001/comments/c0000001/accepted", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "c0000001", svc.acceptedID)
	require.Equal(t, "tok-1", svc.caller)
}
