package get

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"tutor-portal/api"
	"tutor-portal/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	query api.BookListQuery
	err   error
}

func (s *stubLister) ListBooks(_ context.Context, q api.BookListQuery) (*api.BookListResponse, error) {
	s.query = q
	if s.err != nil {
		return nil, s.err
	}
	return &api.BookListResponse{Books: []api.BookResponse{{Title: "Matematika Dasar"}}}, nil
}

func list(stub *stubLister, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), stub).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListBooksPassesFilters(t *testing.T) {
	stub := &stubLister{}

	rec := list(stub, "/admin/books?search=mat&status=available&lendable=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.BookListQuery{Search: "mat", Status: "available", Lendable: true}, stub.query)
	assert.Contains(t, rec.Body.String(), "Matematika Dasar")

	rec = list(stub, "/admin/books")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.BookListQuery{}, stub.query)
}

func TestListBooksBadStatus(t *testing.T) {
	stub := &stubLister{err: response.WithDetail(response.ErrBadRequest, "unknown status")}

	rec := list(stub, "/admin/books?status=shredded")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
