package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/middleware"
	"github.com/stackit-forum/stackit-api/internal/service"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// validationErrorFor produces a genuine validator error so handler tests
// exercise the field-error mapping path.
func validationErrorFor(t *testing.T) error {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.Struct(dto.VoteRequest{Field: "bogus"})
	require.Error(t, err)
	return err
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

// sessionLocals injects an authenticated user the way the session
// middleware would, without a real cookie round-trip.
func sessionLocals(token, role, username string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalsUserToken, token)
		c.Locals(middleware.LocalsUserRole, role)
		c.Locals(middleware.LocalsUsername, username)
		return c.Next()
	}
}

type mockPostService struct {
	feedQuery dto.FeedQuery
	feedPage  dto.FeedResponse
	feedErr   error
	view      dto.PostViewResponse
	viewErr   error
	created   dto.PostResponse
	slug      string
	createErr error
	voteErr   error
	author    string
}

func (m *mockPostService) CreatePost(_ context.Context, author string, _ dto.PostCreateRequest) (dto.PostResponse, string, error) {
	m.author = author
	return m.created, m.slug, m.createErr
}

func (m *mockPostService) Feed(_ context.Context, query dto.FeedQuery) (dto.FeedResponse, error) {
	m.feedQuery = query
	if m.feedErr != nil {
		return dto.FeedResponse{}, m.feedErr
	}
	return m.feedPage, nil
}

func (m *mockPostService) GetPost(_ context.Context, _, _ string) (dto.PostViewResponse, error) {
	return m.view, m.viewErr
}

func (m *mockPostService) VotePost(_ context.Context, _ string, _ dto.VoteRequest) error {
	return m.voteErr
}

type mockCommentService struct {
	created    dto.CommentResponse
	createErr  error
	voteErr    error
	acceptErr  error
	acceptedID string
	caller     string
	author     string
}

func (m *mockCommentService) CreateComment(_ context.Context, _, author string, _ dto.CommentCreateRequest) (dto.CommentResponse, error) {
	m.author = author
	return m.created, m.createErr
}

func (m *mockCommentService) VoteComment(_ context.Context, _, _ string, _ dto.VoteRequest) error {
	return m.voteErr
}

func (m *mockCommentService) MarkAccepted(_ context.Context, _, commentID, caller string) error {
	m.acceptedID = commentID
	m.caller = caller
	return m.acceptErr
}

func (m *mockCommentService) UnmarkAccepted(_ context.Context, _, commentID, caller string) error {
	m.acceptedID = commentID
	m.caller = caller
	return m.acceptErr
}

func (m *mockCommentService) CommentTree(_ context.Context, _, _ string) ([]*dto.CommentNode, error) {
	return nil, nil
}

type mockNotificationService struct {
	listedFor  string
	items      []dto.NotificationResponse
	recipients int
	err        error
}

func (m *mockNotificationService) ListAndMarkRead(_ context.Context, userToken string) ([]dto.NotificationResponse, error) {
	m.listedFor = userToken
	return m.items, m.err
}

func (m *mockNotificationService) Broadcast(_ context.Context, _ dto.BroadcastRequest) (int, error) {
	return m.recipients, m.err
}

type mockAuthService struct {
	retryAfter *time.Time
	sendErr    error
	user       service.AuthUser
	cookie     string
	signInErr  error
	resolveErr error
	refreshed  []string
}

func (m *mockAuthService) SendOTP(_ context.Context, _ dto.SendOTPRequest) (*time.Time, error) {
	return m.retryAfter, m.sendErr
}

func (m *mockAuthService) SignIn(_ context.Context, _ dto.SignInRequest) (service.AuthUser, string, error) {
	return m.user, m.cookie, m.signInErr
}

func (m *mockAuthService) ResolveSession(_ context.Context, _ string) (service.AuthUser, error) {
	if m.resolveErr != nil {
		return service.AuthUser{}, m.resolveErr
	}
	return m.user, nil
}

func (m *mockAuthService) RefreshToken(_ context.Context, token string) error {
	m.refreshed = append(m.refreshed, token)
	return nil
}

func (m *mockAuthService) Logout(_ context.Context, _ string) error {
	return nil
}

type mockModerationService struct {
	report     dto.ReportResponse
	reportErr  error
	pending    []dto.ReportResponse
	resolved   int64
	resolveErr error
	verdictErr error
	lastAction string
}

func (m *mockModerationService) ReportContent(_ context.Context, _ dto.ReportCreateRequest) (dto.ReportResponse, error) {
	return m.report, m.reportErr
}

func (m *mockModerationService) PendingReports(_ context.Context) ([]dto.ReportResponse, error) {
	return m.pending, nil
}

func (m *mockModerationService) ResolveReport(_ context.Context, _, _ string) (int64, error) {
	return m.resolved, m.resolveErr
}

func (m *mockModerationService) ModeratePost(_ context.Context, _, action, _ string) error {
	m.lastAction = action
	return m.verdictErr
}

func (m *mockModerationService) ModerateComment(_ context.Context, _, _, action, _ string) error {
	m.lastAction = action
	return m.verdictErr
}
