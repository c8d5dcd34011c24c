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

type stubRecorder struct {
	calls int
	err   error
}

func (s *stubRecorder) RecordAttendance(_ context.Context, teacherID uuid.UUID, req *api.AttendanceRequest) (*api.AttendanceResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	status := req.Status
	return &api.AttendanceResponse{ID: uuid.New(), StudentID: req.StudentID, RecordedBy: &teacherID, Status: &status}, nil
}

func post(t *testing.T, stub *stubRecorder, withUser bool, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/guru/attendance", strings.NewReader(body))
	if withUser {
		req = req.WithContext(identity.WithUser(req.Context(), &identity.User{ID: uuid.New(), Role: models.RoleTeacher}))
	}

	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), stub).ServeHTTP(rec, req)
	return rec
}

var body = fmt.Sprintf(`{"schedule_id":%q,"student_id":%q,"status":"Hadir"}`, uuid.NewString(), uuid.NewString())

func TestRecordAttendance(t *testing.T) {
	stub := &stubRecorder{}

	rec := post(t, stub, true, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, stub.calls)
	assert.Contains(t, rec.Body.String(), `"status":"Hadir"`)
}

func TestRecordAttendanceBeforeStart(t *testing.T) {
	stub := &stubRecorder{err: fmt.Errorf("service.RecordAttendance: %w", response.ErrScheduleNotStarted)}

	rec := post(t, stub, true, body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), string(response.SCHEDULE_NOT_STARTED))
}

func TestRecordAttendanceNeedsIdentityAndFields(t *testing.T) {
	stub := &stubRecorder{}

	rec := post(t, stub, false, body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(t, stub, true, `{"status":"Hadir"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "schedule_id")

	assert.Zero(t, stub.calls)
}
