package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/video-catalog-backend/api"
	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/config"
	"github.com/rpupo63/video-catalog-backend/database"
	"github.com/rpupo63/video-catalog-backend/models"
	"github.com/rpupo63/video-catalog-backend/services/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenResolver map[string]string

func (r tokenResolver) ResolveEmail(_ context.Context, token string) (string, error) {
	if email, ok := r[token]; ok {
		return email, nil
	}
	return "", identity.ErrRejected
}

type catalogServer struct {
	*httptest.Server
	repo database.VideoRepository
}

func newCatalogServer(t *testing.T) *catalogServer {
	t.Helper()

	db := database.NewInMemory()
	resolver := tokenResolver{
		"admin-token": "admin@example.com",
		"user-token":  "someone@example.com",
	}
	cfg := &config.Config{AdminEmail: "admin@example.com", PublicSiteURL: "/"}
	router := api.NewRouter(db, resolver, identity.NewOAuthExchanger(config.Identity{}),
		api.WithConfig(cfg), api.WithAccessLog(nil))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &catalogServer{Server: srv, repo: db.VideoRepo()}
}

func (s *catalogServer) seed(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		entry := &models.VideoEntry{
			YoutubeURL: "https://youtu.be/abc123456",
			Title:      "video",
			Category:   catalog.UncategorizedLabel,
			Rating:     3,
		}
		require.NoError(t, s.repo.Add(context.Background(), entry))
	}
}

func adminSession(t *testing.T, c *Client) *Session {
	t.Helper()
	session := &Session{}
	require.NoError(t, session.Apply(context.Background(), c, "admin-token"))
	return session
}

func TestPagingAgainstServer(t *testing.T) {
	srv := newCatalogServer(t)
	srv.seed(t, 11)

	c := NewListController(New(srv.URL), nil, WithPageSize(10))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	state := c.State()
	assert.Equal(t, []int{1, 2}, state.VisiblePages())
	assert.Len(t, state.Videos, 10)
	assert.Equal(t, "1 / 2", state.PageLabel())

	require.NoError(t, c.GoToPage(ctx, 2))
	state = c.State()
	assert.Len(t, state.Videos, 1)
	assert.Equal(t, "2 / 2", state.PageLabel())
}

func TestListVideosReadsPaginationHeaders(t *testing.T) {
	srv := newCatalogServer(t)
	srv.seed(t, 7)

	page, err := New(srv.URL).ListVideos(context.Background(), catalog.VideoQuery{Limit: 5, Offset: 5}.Normalize())
	require.NoError(t, err)
	assert.Len(t, page.Videos, 2)
	assert.Equal(t, int64(7), page.TotalCount)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 5, page.Offset)
}

func TestVideoLifecycle(t *testing.T) {
	srv := newCatalogServer(t)
	c := New(srv.URL)
	ctx := context.Background()
	session := adminSession(t, c)

	created, err := c.CreateVideo(ctx, session, map[string]any{
		"youtubeUrl": "https://youtu.be/abc123456",
		"title":      "Lifecycle",
		"tags":       []string{"go", "testing"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, created.Rating)

	fetched, err := c.GetVideo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lifecycle", fetched.Title)

	updated, err := c.UpdateVideo(ctx, session, created.ID, map[string]any{"rating": 5, "publishDate": nil})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Lifecycle", updated.Title)
	assert.Nil(t, updated.PublishDate)

	require.NoError(t, c.DeleteVideo(ctx, session, created.ID))

	err = c.DeleteVideo(ctx, session, created.ID)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))

	_, err = c.GetVideo(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestValidationErrorsSurfaceFields(t *testing.T) {
	srv := newCatalogServer(t)
	c := New(srv.URL)
	session := adminSession(t, c)

	_, err := c.CreateVideo(context.Background(), session, map[string]any{
		"youtubeUrl": "https://youtu.be/abc123456",
		"title":      "Too long",
		"memo":       strings.Repeat("x", 2001),
	})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Fields, "memo")
}

func TestMutationsNeedSession(t *testing.T) {
	srv := newCatalogServer(t)
	c := New(srv.URL)

	_, err := c.CreateVideo(context.Background(), &Session{}, map[string]any{"title": "x"})
	assert.ErrorIs(t, err, ErrNoSession)

	err = c.DeleteVideo(context.Background(), nil, uuid.New())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestNonAdminSessionIsCleared(t *testing.T) {
	srv := newCatalogServer(t)
	c := New(srv.URL)
	session := &Session{}

	err := session.Apply(context.Background(), c, "user-token")
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Empty(t, session.Token())

	err = session.Apply(context.Background(), c, "forged")
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestIsAdmin(t *testing.T) {
	srv := newCatalogServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	admin, err := c.IsAdmin(ctx, "admin-token")
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = c.IsAdmin(ctx, "user-token")
	require.NoError(t, err)
	assert.False(t, admin)

	admin, err = c.IsAdmin(ctx, "")
	require.NoError(t, err)
	assert.False(t, admin)
}
