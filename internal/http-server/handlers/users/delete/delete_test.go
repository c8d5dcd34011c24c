package delete

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"tutor-portal/internal/http-server/middleware/identity"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDeleter struct {
	callerID, id uuid.UUID
	err          error
}

func (s *stubDeleter) DeleteUser(_ context.Context, callerID, id uuid.UUID) error {
	s.callerID, s.id = callerID, id
	return s.err
}

func remove(stub *stubDeleter, callerID uuid.UUID, id string) *httptest.ResponseRecorder {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/"+id, nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = identity.WithUser(ctx, &identity.User{ID: callerID, Role: models.RoleAdmin})

	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), stub).ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func TestDeleteUser(t *testing.T) {
	admin, target := uuid.New(), uuid.New()
	stub := &stubDeleter{}

	rec := remove(stub, admin, target.String())
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, admin, stub.callerID)
	assert.Equal(t, target, stub.id)
}

func TestDeleteUserErrors(t *testing.T) {
	admin := uuid.New()

	rec := remove(&stubDeleter{err: response.WithDetail(response.ErrBadRequest, "the signed-in account cannot delete itself")}, admin, admin.String())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot delete itself")

	rec = remove(&stubDeleter{err: response.WithDetail(response.ErrConflict, "user is still referenced by other records")}, admin, uuid.NewString())
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = remove(&stubDeleter{}, admin, "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
