package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutor-portal/internal/models"
	"tutor-portal/internal/service"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *Store
	teacher  models.User
	student  models.Student
	schedule models.Schedule
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s := New()

	teacher := models.User{ID: uuid.New(), Name: "Bu Rina", Email: "rina@example.com", Role: models.RoleTeacher, IsActive: true}
	require.NoError(t, s.CreateUser(ctx, &teacher))

	student := models.Student{ID: uuid.New(), Code: "SW001", Name: "Adi", Status: models.StudentActive}
	require.NoError(t, s.CreateStudent(ctx, &student))

	schedule := models.Schedule{
		ID:          uuid.New(),
		TeacherID:   teacher.ID,
		Subject:     "Math",
		Topic:       "Fractions",
		StartTime:   &now,
		StatusBadge: models.BadgeUpcoming,
	}
	require.NoError(t, s.CreateSchedule(ctx, &schedule))
	require.NoError(t, s.SyncRoster(ctx, schedule.ID, []uuid.UUID{student.ID}))

	return fixture{store: s, teacher: teacher, student: student, schedule: schedule}
}

func (f fixture) attendance(date time.Time) *models.Attendance {
	scheduleID := f.schedule.ID
	return &models.Attendance{
		ID:             uuid.New(),
		StudentID:      f.student.ID,
		ScheduleID:     &scheduleID,
		AttendanceDate: &date,
	}
}

func TestAttendanceNaturalKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first := f.attendance(date)
	require.NoError(t, f.store.CreateAttendance(ctx, first))

	err := f.store.CreateAttendance(ctx, f.attendance(date))
	assert.ErrorIs(t, err, response.ErrConflict)

	// same student and schedule on another day is a different row
	require.NoError(t, f.store.CreateAttendance(ctx, f.attendance(date.AddDate(0, 0, 1))))

	found, err := f.store.FindAttendance(ctx, f.student.ID, f.schedule.ID, date)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = f.store.FindAttendance(ctx, f.student.ID, f.schedule.ID, date.AddDate(0, 0, 7))
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestAttendanceReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	row := f.attendance(time.Now())
	row.StudentID = uuid.New()

	err := f.store.CreateAttendance(ctx, row)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestNoteAttendanceIsUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	row := f.attendance(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.store.CreateAttendance(ctx, row))

	note := func() *models.TeacherNote {
		id := row.ID
		return &models.TeacherNote{
			ID:           uuid.New(),
			StudentID:    f.student.ID,
			TeacherID:    f.teacher.ID,
			AttendanceID: &id,
			Title:        "Attendance Note",
			Note:         "late",
			Category:     models.CategoryGeneral,
			Visibility:   models.VisibilityParent,
		}
	}

	first := note()
	require.NoError(t, f.store.CreateNote(ctx, first))
	assert.ErrorIs(t, f.store.CreateNote(ctx, note()), response.ErrConflict)

	// deleting the row unlinks its note
	require.NoError(t, f.store.DeleteAttendance(ctx, row.ID))

	got, err := f.store.GetNote(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AttendanceID)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boom := errors.New("boom")

	err := f.store.WithTx(ctx, func(repo service.Repository) error {
		require.NoError(t, repo.SetScheduleBadge(ctx, f.schedule.ID, models.BadgeCompleted))
		require.NoError(t, repo.SyncRoster(ctx, f.schedule.ID, nil))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := f.store.GetSchedule(ctx, f.schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BadgeUpcoming, got.StatusBadge)

	rosters, err := f.store.Rosters(ctx, []uuid.UUID{f.schedule.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.student.ID}, rosters[f.schedule.ID])
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.store.WithTx(ctx, func(repo service.Repository) error {
		return repo.SetScheduleBadge(ctx, f.schedule.ID, models.BadgeCanceled)
	})
	require.NoError(t, err)

	got, err := f.store.GetSchedule(ctx, f.schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BadgeCanceled, got.StatusBadge)
}

func TestListSchedulesFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other := models.Student{ID: uuid.New(), Code: "SW002", Name: "Budi", Status: models.StudentActive}
	require.NoError(t, f.store.CreateStudent(ctx, &other))

	byStudent, err := f.store.ListSchedules(ctx, models.ScheduleFilter{StudentID: &f.student.ID})
	require.NoError(t, err)
	assert.Len(t, byStudent, 1)

	byOther, err := f.store.ListSchedules(ctx, models.ScheduleFilter{StudentID: &other.ID})
	require.NoError(t, err)
	assert.Empty(t, byOther)

	now := time.Now()
	require.NoError(t, f.store.SetScheduleDeletedAt(ctx, f.schedule.ID, &now))

	live, err := f.store.ListSchedules(ctx, models.ScheduleFilter{TeacherID: &f.teacher.ID})
	require.NoError(t, err)
	assert.Empty(t, live)

	trashed, err := f.store.ListSchedules(ctx, models.ScheduleFilter{TeacherID: &f.teacher.ID, Trashed: models.OnlyTrashed})
	require.NoError(t, err)
	assert.Len(t, trashed, 1)
}

func TestStudentCodeIsUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	dup := models.Student{ID: uuid.New(), Code: f.student.Code, Name: "Citra", Status: models.StudentActive}
	assert.ErrorIs(t, f.store.CreateStudent(ctx, &dup), response.ErrConflict)

	dupEmail := models.User{ID: uuid.New(), Email: "RINA@example.com", Role: models.RoleParent}
	assert.ErrorIs(t, f.store.CreateUser(ctx, &dupEmail), response.ErrConflict)
}
