package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"tutor-portal/internal/models"
	"tutor-portal/internal/service"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with INTEGRATION_TESTS=1 and TEST_STORAGE_PATH pointing at a scratch
// database.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run postgres tests")
	}

	dsn := os.Getenv("TEST_STORAGE_PATH")
	if dsn == "" {
		t.Skip("TEST_STORAGE_PATH is not set")
	}

	s, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seed(t *testing.T, s *Storage) (models.User, models.Student, models.Schedule) {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	teacher := models.User{
		ID:        uuid.New(),
		Name:      "Bu Rina",
		Email:     uuid.NewString() + "@example.com",
		Role:      models.RoleTeacher,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateUser(ctx, &teacher))

	student := models.Student{
		ID:        uuid.New(),
		Code:      "T" + uuid.NewString()[:8],
		Name:      "Adi",
		Status:    models.StudentActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateStudent(ctx, &student))

	schedule := models.Schedule{
		ID:          uuid.New(),
		TeacherID:   teacher.ID,
		StudentID:   &student.ID,
		Subject:     "Math",
		Topic:       "Fractions",
		StartTime:   &now,
		StatusBadge: models.BadgeUpcoming,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.CreateSchedule(ctx, &schedule))
	require.NoError(t, s.SyncRoster(ctx, schedule.ID, []uuid.UUID{student.ID}))

	return teacher, student, schedule
}

func TestAttendanceRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	teacher, student, schedule := seed(t, s)

	date := models.DateOf(*schedule.StartTime, time.UTC)
	status := models.StatusSick
	row := models.Attendance{
		ID:             uuid.New(),
		StudentID:      student.ID,
		ScheduleID:     &schedule.ID,
		RecordedBy:     &teacher.ID,
		AttendanceDate: &date,
		Status:         &status,
		Meta:           []byte(`{"device":"tablet"}`),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, s.CreateAttendance(ctx, &row))

	dup := row
	dup.ID = uuid.New()
	assert.ErrorIs(t, s.CreateAttendance(ctx, &dup), response.ErrConflict)

	found, err := s.FindAttendance(ctx, student.ID, schedule.ID, date)
	require.NoError(t, err)
	assert.Equal(t, row.ID, found.ID)
	assert.Equal(t, models.StatusSick, *found.Status)
	assert.JSONEq(t, `{"device":"tablet"}`, string(found.Meta))
	assert.True(t, models.SameDate(date, *found.AttendanceDate))

	list, err := s.ListAttendance(ctx, models.AttendanceFilter{TeacherID: &teacher.ID, Date: &date})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err := s.DeleteScheduleAttendance(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWithTxRollsBack(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	_, student, schedule := seed(t, s)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(repo service.Repository) error {
		require.NoError(t, repo.SetScheduleBadge(ctx, schedule.ID, models.BadgeCompleted))
		require.NoError(t, repo.SyncRoster(ctx, schedule.ID, nil))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetSchedule(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BadgeUpcoming, got.StatusBadge)

	rosters, err := s.Rosters(ctx, []uuid.UUID{schedule.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{student.ID}, rosters[schedule.ID])

	byStudent, err := s.ListSchedules(ctx, models.ScheduleFilter{StudentID: &student.ID})
	require.NoError(t, err)
	assert.Len(t, byStudent, 1)
}

func TestMissingRowsAreNotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetSchedule(ctx, uuid.New())
	assert.ErrorIs(t, err, response.ErrNotFound)

	err = s.SetScheduleBadge(ctx, uuid.New(), models.BadgeOngoing)
	assert.ErrorIs(t, err, response.ErrNotFound)

	_, err = s.GetNoteByAttendance(ctx, uuid.New())
	assert.ErrorIs(t, err, response.ErrNotFound)
}
