package create

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tutor-portal/api"
	"tutor-portal/internal/http-server/middleware/identity"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLender struct {
	issuerID uuid.UUID
	calls    int
	err      error
}

func (s *stubLender) BorrowBook(_ context.Context, issuerID uuid.UUID, req *api.BorrowRequest) (*api.LoanResponse, error) {
	s.calls++
	s.issuerID = issuerID
	if s.err != nil {
		return nil, s.err
	}
	return &api.LoanResponse{ID: uuid.New(), BookID: req.BookID, Status: string(models.LoanBorrowed), BorrowedAt: req.BorrowedAt}, nil
}

func post(stub *stubLender, admin *identity.User, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/loans", strings.NewReader(body))
	if admin != nil {
		req = req.WithContext(identity.WithUser(req.Context(), admin))
	}

	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), stub).ServeHTTP(rec, req)
	return rec
}

func TestBorrowBook(t *testing.T) {
	admin := &identity.User{ID: uuid.New(), Role: models.RoleAdmin}
	stub := &stubLender{}

	body := fmt.Sprintf(`{"book_id":%q,"user_id":%q,"borrowed_at":"2025-03-10"}`, uuid.NewString(), uuid.NewString())
	rec := post(stub, admin, body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, admin.ID, stub.issuerID)
	assert.Contains(t, rec.Body.String(), `"loan"`)
}

func TestBorrowBookNeedsBorrower(t *testing.T) {
	admin := &identity.User{ID: uuid.New(), Role: models.RoleAdmin}
	stub := &stubLender{}

	rec := post(stub, admin, fmt.Sprintf(`{"book_id":%q,"borrowed_at":"2025-03-10"}`, uuid.NewString()))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, stub.calls)

	walkIn := fmt.Sprintf(`{"book_id":%q,"borrower_name":"Bu Sari","borrowed_at":"2025-03-10"}`, uuid.NewString())
	rec = post(stub, admin, walkIn)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestBorrowBookOutOfStock(t *testing.T) {
	stub := &stubLender{err: response.WithDetail(response.ErrBadRequest, "book is not available for borrowing")}
	body := fmt.Sprintf(`{"book_id":%q,"borrower_name":"Bu Sari","borrowed_at":"2025-03-10"}`, uuid.NewString())

	rec := post(stub, &identity.User{ID: uuid.New(), Role: models.RoleAdmin}, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "book is not available for borrowing")
}

func TestBorrowBookWithoutIdentity(t *testing.T) {
	stub := &stubLender{}
	rec := post(stub, nil, `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, stub.calls)
}
