package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tutor-portal/api"
	"tutor-portal/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFailMapsSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
		msg    string
	}{
		{"not found", fmt.Errorf("op: %w", response.ErrNotFound), http.StatusNotFound, response.NOT_FOUND, "resource not found"},
		{"forbidden", response.ErrForbidden, http.StatusForbidden, response.FORBIDDEN, "access denied"},
		{"locked", response.ErrLocked, http.StatusLocked, response.LOCKED, "schedule is being modified, retry later"},
		{"conflict detail", response.WithDetail(response.ErrConflict, "student code already taken"), http.StatusConflict, response.CONFLICT, "student code already taken"},
		{"not started", response.ErrScheduleNotStarted, http.StatusUnprocessableEntity, response.SCHEDULE_NOT_STARTED, "schedule has not started yet"},
		{"bad request", fmt.Errorf("op: %w", response.WithDetail(response.ErrBadRequest, "end_time must not be before start_time")), http.StatusBadRequest, response.VALIDATION_FAILED, "end_time must not be before start_time"},
		{"unknown", errors.New("db is down"), http.StatusInternalServerError, response.FAILED_REQUEST, "failed to do it"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			Fail(rec, req, discard(), tt.err, "failed to do it")

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+string(tt.code)+`"`)
			assert.Contains(t, rec.Body.String(), tt.msg)
		})
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), discard(), errors.New("pq: password authentication failed"), "failed to list")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestDecode(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

		var body api.NoteRequest
		require.False(t, Decode(rec, req, discard(), &body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), string(response.BAD_REQUEST))
	})

	t.Run("invalid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x","note":"y","category":"gossip"}`))

		var body api.NoteRequest
		require.False(t, Decode(rec, req, discard(), &body))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), string(response.VALIDATION_FAILED))
		assert.Contains(t, rec.Body.String(), "field 'category' must be one of")
	})

	t.Run("valid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
			`{"student_id":"0b7c7a1e-2f43-4c55-9f0a-1d6a3b0e8c11","title":"x","note":"y","category":"academic"}`))

		var body api.NoteRequest
		require.True(t, Decode(rec, req, discard(), &body))
		assert.Equal(t, "academic", body.Category)
	})
}

func TestQueryID(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := QueryID(rec, httptest.NewRequest(http.MethodGet, "/?student_id=", nil), discard(), "student_id")
	assert.True(t, ok)
	assert.Nil(t, id)

	rec = httptest.NewRecorder()
	_, ok = QueryID(rec, httptest.NewRequest(http.MethodGet, "/?student_id=abc", nil), discard(), "student_id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallerRequiresIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := Caller(rec, httptest.NewRequest(http.MethodGet, "/", nil), discard())
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
