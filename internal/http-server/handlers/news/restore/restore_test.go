package restore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"tutor-portal/api"
	"tutor-portal/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRestorer struct {
	err error
}

func (s stubRestorer) RestoreNews(_ context.Context, id uuid.UUID) (*api.NewsResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &api.NewsResponse{ID: id, Title: "Open house", Slug: "open-house-ab12"}, nil
}

func restore(stub stubRestorer, id string) *httptest.ResponseRecorder {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)

	req := httptest.NewRequest(http.MethodPost, "/admin/news/"+id+"/restore", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), stub).ServeHTTP(rec, req)
	return rec
}

func TestRestoreNews(t *testing.T) {
	id := uuid.New()

	rec := restore(stubRestorer{}, id.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.News.ID)
	assert.Nil(t, resp.News.DeletedAt)
}

func TestRestoreNewsNotTrashed(t *testing.T) {
	rec := restore(stubRestorer{err: response.ErrNotFound}, uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
