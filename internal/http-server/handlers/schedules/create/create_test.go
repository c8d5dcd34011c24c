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
	"tutor-portal/internal/http-server/middleware/identity"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCreator struct {
	teacherID uuid.UUID
	req       *api.ScheduleCreateRequest
	err       error
}

func (s *stubCreator) CreateSchedule(_ context.Context, teacherID uuid.UUID, req *api.ScheduleCreateRequest) (*api.ScheduleResponse, error) {
	s.teacherID, s.req = teacherID, req
	if s.err != nil {
		return nil, s.err
	}
	return &api.ScheduleResponse{ID: uuid.New(), Subject: req.Subject, StatusBadge: "Upcoming"}, nil
}

func serve(t *testing.T, stub *stubCreator, teacherID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			user := &identity.User{ID: teacherID, Role: models.RoleTeacher}
			next.ServeHTTP(w, req.WithContext(identity.WithUser(req.Context(), user)))
		})
	})
	r.Post("/guru/schedules", New(slog.New(slog.NewTextHandler(io.Discard, nil)), stub))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/guru/schedules", strings.NewReader(body)))
	return rec
}

const validBody = `{
	"student_ids": ["6a1f0c1e-9a55-4f5b-8d7e-0f7c3f0e2a10"],
	"subject": "Math",
	"topic": "Fractions",
	"start_time": "2025-03-10 09:00"
}`

func TestCreateSchedule(t *testing.T) {
	teacherID := uuid.New()
	stub := &stubCreator{}

	rec := serve(t, stub, teacherID, validBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, teacherID, stub.teacherID)
	assert.Equal(t, "Fractions", stub.req.Topic)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Math", resp.Schedule.Subject)
	assert.Equal(t, "Upcoming", resp.Schedule.StatusBadge)
}

func TestCreateScheduleValidation(t *testing.T) {
	stub := &stubCreator{}

	rec := serve(t, stub, uuid.New(), `{"student_ids": [], "subject": "Math", "topic": "Fractions", "start_time": "2025-03-10 09:00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "student_ids")
	assert.Nil(t, stub.req)

	rec = serve(t, stub, uuid.New(), `{"student_ids": ["6a1f0c1e-9a55-4f5b-8d7e-0f7c3f0e2a10"], "subject": "Math", "topic": "Fractions", "start_time": "x", "max_participants": 500}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "max_participants")
}

func TestCreateScheduleServiceErrors(t *testing.T) {
	stub := &stubCreator{err: response.WithDetail(response.ErrBadRequest, "end_time must not be before start_time")}
	rec := serve(t, stub, uuid.New(), validBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "end_time must not be before start_time")

	stub = &stubCreator{err: response.ErrLocked}
	rec = serve(t, stub, uuid.New(), validBody)
	assert.Equal(t, http.StatusLocked, rec.Code)
}
