package create

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tutor-portal/api"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCreator struct {
	err error
}

func (s stubCreator) CreateStudent(_ context.Context, req *api.StudentRequest) (*api.StudentSaveResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	resp := &api.StudentSaveResponse{Student: api.StudentResponse{ID: uuid.New(), Code: "SW001", Name: req.Name}}
	if req.CreateParentAccount {
		resp.ParentAccount = &api.ParentAccount{Email: *req.NewParentEmail, Password: "s3cretPass"}
	}
	return resp, nil
}

func post(creator StudentCreator, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/students", strings.NewReader(body))
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), creator).ServeHTTP(rec, req)
	return rec
}

func TestCreateStudentWithParentAccount(t *testing.T) {
	rec := post(stubCreator{}, `{
		"name": "Adi",
		"status": "active",
		"create_parent_account": true,
		"new_parent_name": "Pak Budi",
		"new_parent_email": "budi@example.com"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.StudentSaveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SW001", resp.Student.Code)
	require.NotNil(t, resp.ParentAccount)
	assert.Equal(t, "budi@example.com", resp.ParentAccount.Email)
}

func TestCreateStudentValidation(t *testing.T) {
	rec := post(stubCreator{}, `{"name": "Adi", "status": "active", "create_parent_account": true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "new_parent_email")

	rec = post(stubCreator{}, `{"name": "Adi", "status": "graduated"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateStudentConflict(t *testing.T) {
	rec := post(stubCreator{err: response.WithDetail(response.ErrConflict, "email is already registered")}, `{"name": "Adi", "status": "active"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is already registered")
}
