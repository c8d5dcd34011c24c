package service_test

import (
	"strings"
	"testing"

	"tutor-portal/api"
	"tutor-portal/internal/models"
	"tutor-portal/internal/service"
	"tutor-portal/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "lomba-matematika-2025", service.Slugify("Lomba Matematika 2025!"))
	assert.Equal(t, "cafe-creme", service.Slugify("  Café  Crème "))
	assert.Equal(t, "", service.Slugify("???"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Hello world", service.Excerpt("<p>Hello <b>world</b></p>", 160))

	long := strings.Repeat("a", 200)
	got := service.Excerpt(long, 160)
	assert.Equal(t, strings.Repeat("a", 160)+"...", got)
}

func TestNewsLifecycle(t *testing.T) {
	s := newSuite(t)
	admin := s.user("admin@example.com", models.RoleAdmin)

	created, err := s.svc.CreateNews(s.ctx, admin.ID, &api.NewsRequest{
		Title:     "Wisuda Angkatan 5",
		Body:      "<p>Selamat kepada semua siswa.</p>",
		EventDate: strp("2025-03-01"),
		Type:      string(models.NewsActivity),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.Slug, "wisuda-angkatan-5-"))
	assert.Len(t, created.Slug, len("wisuda-angkatan-5-")+4)
	require.NotNil(t, created.Excerpt)
	assert.Equal(t, "Selamat kepada semua siswa.", *created.Excerpt)
	assert.True(t, created.IsPublished)
	assert.Equal(t, "01 Mar 2025", created.DisplayDate)

	// same title, different slug
	twin, err := s.svc.CreateNews(s.ctx, admin.ID, &api.NewsRequest{
		Title:       "Wisuda Angkatan 5",
		Subtitle:    strp("Galeri"),
		Body:        "Foto",
		Type:        string(models.NewsGallery),
		IsPublished: boolp(false),
	})
	require.NoError(t, err)
	assert.NotEqual(t, created.Slug, twin.Slug)
	assert.Equal(t, "Galeri", *twin.Excerpt)

	updated, err := s.svc.UpdateNews(s.ctx, created.ID, &api.NewsRequest{
		Title: "Wisuda Angkatan Kelima",
		Body:  "Diperbarui",
		Type:  string(models.NewsArticle),
	})
	require.NoError(t, err)
	assert.Equal(t, created.Slug, updated.Slug, "slug survives edits")
	assert.Nil(t, updated.EventDate)

	list, err := s.svc.ListNews(s.ctx, api.NewsListQuery{})
	require.NoError(t, err)
	assert.Len(t, list.News, 2)
	assert.Equal(t, api.NewsStats{Total: 2, Published: 1}, list.Stats)

	require.NoError(t, s.svc.DeleteNews(s.ctx, created.ID))
	require.NoError(t, s.svc.DeleteNews(s.ctx, created.ID), "deleting twice is a no-op")

	list, err = s.svc.ListNews(s.ctx, api.NewsListQuery{})
	require.NoError(t, err)
	assert.Len(t, list.News, 1)

	trashed, err := s.svc.ListNews(s.ctx, api.NewsListQuery{OnlyTrashed: true})
	require.NoError(t, err)
	require.Len(t, trashed.News, 1)
	assert.Equal(t, created.ID, trashed.News[0].ID)

	_, err = s.svc.UpdateNews(s.ctx, created.ID, &api.NewsRequest{Title: "x", Body: "x", Type: "news"})
	assert.ErrorIs(t, err, response.ErrNotFound)

	restored, err := s.svc.RestoreNews(s.ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)

	found, err := s.svc.ListNews(s.ctx, api.NewsListQuery{Search: "kelima"})
	require.NoError(t, err)
	require.Len(t, found.News, 1)
	assert.Equal(t, created.ID, found.News[0].ID)
}

func TestNewsAuthorCannotBeDeleted(t *testing.T) {
	s := newSuite(t)
	admin := s.user("admin@example.com", models.RoleAdmin)
	other := s.user("root@example.com", models.RoleAdmin)

	_, err := s.svc.CreateNews(s.ctx, admin.ID, &api.NewsRequest{Title: "Info", Body: "isi", Type: "news"})
	require.NoError(t, err)

	err = s.svc.DeleteUser(s.ctx, other.ID, admin.ID)
	assert.ErrorIs(t, err, response.ErrConflict)
}

func boolp(b bool) *bool { return &b }
