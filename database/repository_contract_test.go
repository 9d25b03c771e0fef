package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/errs"
	"github.com/rpupo63/video-catalog-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo VideoRepository, title string, rating int, tags ...string) models.VideoEntry {
	t.Helper()
	entry := &models.VideoEntry{
		YoutubeURL: "https://youtu.be/abc123456",
		Title:      title,
		Tags:       tags,
		Category:   catalog.UncategorizedLabel,
		Rating:     rating,
	}
	require.NoError(t, repo.Add(context.Background(), entry))
	return *entry
}

func patchOf(t *testing.T, body string) catalog.VideoInput {
	t.Helper()
	raw, err := catalog.DecodeObject([]byte(body))
	require.NoError(t, err)
	in, err := catalog.DefaultRules().ParsePatch(raw)
	require.NoError(t, err)
	return in
}

func titlesOf(entries []models.VideoEntry) []string {
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	return titles
}

// runRepositoryContract exercises behavior every VideoRepository must share.
// newRepo must return an empty store.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) VideoRepository) {
	ctx := context.Background()

	t.Run("add assigns id and added date", func(t *testing.T) {
		repo := newRepo(t)
		callerID := uuid.New()
		entry := &models.VideoEntry{ID: callerID, YoutubeURL: "u", Title: "T", Category: "c", Rating: 3}

		require.NoError(t, repo.Add(ctx, entry))
		assert.NotEqual(t, callerID, entry.ID)
		assert.WithinDuration(t, time.Now(), entry.AddedDate, time.Minute)

		found, err := repo.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "T", found.Title)
		assert.True(t, entry.AddedDate.Equal(found.AddedDate))
		assert.Empty(t, found.Tags)
	})

	t.Run("rating sort with limit", func(t *testing.T) {
		repo := newRepo(t)
		for i, rating := range []int{5, 3, 4, 1, 2} {
			seed(t, repo, string(rune('a'+i)), rating)
		}

		page, total, err := repo.List(ctx, catalog.VideoQuery{Sort: catalog.SortRating, Order: catalog.OrderDesc, Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		assert.Equal(t, []string{"a", "c"}, titlesOf(page))
	})

	t.Run("offset past end is empty", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 3; i++ {
			seed(t, repo, "v", 3)
		}

		page, total, err := repo.List(ctx, catalog.VideoQuery{Limit: 10, Offset: 3})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.NotNil(t, page)
		assert.Empty(t, page)
	})

	t.Run("newest first by default", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo, "first", 3)
		seed(t, repo, "second", 3)
		seed(t, repo, "third", 3)

		page, _, err := repo.List(ctx, catalog.VideoQuery{})
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, titlesOf(page))
	})

	t.Run("filters and total count", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo, "Go generics", 4, "go")
		seed(t, repo, "Go channels", 5, "go", "concurrency")
		seed(t, repo, "Rust ownership", 3, "rust")
		seed(t, repo, "Kubernetes", 2, "k8s", "cloud")

		page, total, err := repo.List(ctx, catalog.VideoQuery{Tag: "go", Sort: catalog.SortRating, Order: catalog.OrderDesc, Limit: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Equal(t, []string{"Go channels"}, titlesOf(page))

		page, total, err = repo.List(ctx, catalog.VideoQuery{Search: "GO", Sort: catalog.SortRating, Order: catalog.OrderAsc, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Equal(t, []string{"Go generics", "Go channels"}, titlesOf(page))

		page, total, err = repo.List(ctx, catalog.VideoQuery{Search: "cloud", Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, []string{"Kubernetes"}, titlesOf(page))

		_, total, err = repo.List(ctx, catalog.VideoQuery{Category: "AI", Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo, "100% Go", 3)
		seed(t, repo, "Go basics", 3)

		page, total, err := repo.List(ctx, catalog.VideoQuery{Search: "%", Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, []string{"100% Go"}, titlesOf(page))
	})

	t.Run("published nulls last", func(t *testing.T) {
		repo := newRepo(t)
		unpublished := seed(t, repo, "unpublished", 3)
		early := seed(t, repo, "early", 3)
		late := seed(t, repo, "late", 3)
		_, err := repo.Patch(ctx, early.ID, patchOf(t, `{"publishDate":"2023-01-01"}`))
		require.NoError(t, err)
		_, err = repo.Patch(ctx, late.ID, patchOf(t, `{"publishDate":"2024-01-01"}`))
		require.NoError(t, err)

		page, _, err := repo.List(ctx, catalog.VideoQuery{Sort: catalog.SortPublished, Order: catalog.OrderDesc, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"late", "early", "unpublished"}, titlesOf(page))

		page, _, err = repo.List(ctx, catalog.VideoQuery{Sort: catalog.SortPublished, Order: catalog.OrderAsc, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"early", "late", "unpublished"}, titlesOf(page))
		assert.Equal(t, unpublished.ID, page[2].ID)
	})

	t.Run("patch keeps omitted fields", func(t *testing.T) {
		repo := newRepo(t)
		original := seed(t, repo, "Before", 2, "go", "go")

		updated, err := repo.Patch(ctx, original.ID, patchOf(t, `{"title":"After","rating":5}`))
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, 5, updated.Rating)
		assert.Equal(t, original.YoutubeURL, updated.YoutubeURL)
		assert.Equal(t, []string{"go", "go"}, []string(updated.Tags))
		assert.Equal(t, original.Category, updated.Category)
		assert.True(t, original.AddedDate.Equal(updated.AddedDate))
		assert.Equal(t, original.ID, updated.ID)
	})

	t.Run("patch sets and clears publish date", func(t *testing.T) {
		repo := newRepo(t)
		entry := seed(t, repo, "T", 3)

		updated, err := repo.Patch(ctx, entry.ID, patchOf(t, `{"publishDate":"2024-05-01T00:00:00Z"}`))
		require.NoError(t, err)
		require.NotNil(t, updated.PublishDate)
		assert.True(t, updated.PublishDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

		updated, err = repo.Patch(ctx, entry.ID, patchOf(t, `{"publishDate":null}`))
		require.NoError(t, err)
		assert.Nil(t, updated.PublishDate)
	})

	t.Run("patch with no fields returns entry", func(t *testing.T) {
		repo := newRepo(t)
		entry := seed(t, repo, "T", 3)

		updated, err := repo.Patch(ctx, entry.ID, patchOf(t, `{}`))
		require.NoError(t, err)
		assert.Equal(t, "T", updated.Title)
	})

	t.Run("patch missing id is not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Patch(ctx, uuid.New(), patchOf(t, `{"title":"x"}`))
		assert.True(t, errs.IsNotFound(err))

		_, err = repo.Patch(ctx, uuid.New(), patchOf(t, `{}`))
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("delete twice", func(t *testing.T) {
		repo := newRepo(t)
		entry := seed(t, repo, "T", 3)

		require.NoError(t, repo.Delete(ctx, entry.ID))
		err := repo.Delete(ctx, entry.ID)
		assert.True(t, errs.IsNotFound(err))

		_, err = repo.FindByID(ctx, entry.ID)
		assert.True(t, errs.IsNotFound(err))
	})
}
