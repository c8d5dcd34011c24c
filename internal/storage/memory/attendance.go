package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (r repo) GetAttendance(_ context.Context, id uuid.UUID) (*models.Attendance, error) {
	const op = "storage.memory.GetAttendance"

	var out models.Attendance
	err := r.read(func(t *tables) error {
		a, ok := t.attendance[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r repo) FindAttendance(_ context.Context, studentID, scheduleID uuid.UUID, date time.Time) (*models.Attendance, error) {
	const op = "storage.memory.FindAttendance"

	var out *models.Attendance
	_ = r.read(func(t *tables) error {
		for _, a := range t.attendance {
			if sameKey(a, studentID, scheduleID, date) {
				out = &a
				return nil
			}
		}
		return nil
	})

	if out == nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return out, nil
}

func (r repo) ListAttendance(_ context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	var out []models.Attendance

	_ = r.read(func(t *tables) error {
		for _, a := range t.attendance {
			if filter.StudentID != nil && a.StudentID != *filter.StudentID {
				continue
			}
			if filter.ScheduleID != nil && (a.ScheduleID == nil || *a.ScheduleID != *filter.ScheduleID) {
				continue
			}
			if filter.Date != nil && (a.AttendanceDate == nil || !models.SameDate(*a.AttendanceDate, *filter.Date)) {
				continue
			}
			if filter.TeacherID != nil && !taughtOrRecordedBy(t, a, *filter.TeacherID) {
				continue
			}
			out = append(out, a)
		}
		return nil
	})

	sortAttendance(out)
	return out, nil
}

func (r repo) CreateAttendance(_ context.Context, attendance *models.Attendance) error {
	const op = "storage.memory.CreateAttendance"

	return r.write(func(t *tables) error {
		if _, ok := t.attendance[attendance.ID]; ok {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if err := checkAttendance(t, attendance); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.attendance[attendance.ID] = *attendance
		return nil
	})
}

func (r repo) UpdateAttendance(_ context.Context, attendance *models.Attendance) error {
	const op = "storage.memory.UpdateAttendance"

	return r.write(func(t *tables) error {
		if _, ok := t.attendance[attendance.ID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		if err := checkAttendance(t, attendance); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.attendance[attendance.ID] = *attendance
		return nil
	})
}

func (r repo) DeleteAttendance(_ context.Context, id uuid.UUID) error {
	const op = "storage.memory.DeleteAttendance"

	return r.write(func(t *tables) error {
		if _, ok := t.attendance[id]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		deleteAttendance(t, id)
		return nil
	})
}

func (r repo) DeleteScheduleAttendance(_ context.Context, scheduleID uuid.UUID) (int64, error) {
	var n int64

	_ = r.write(func(t *tables) error {
		for id, a := range t.attendance {
			if a.ScheduleID != nil && *a.ScheduleID == scheduleID {
				deleteAttendance(t, id)
				n++
			}
		}
		return nil
	})

	return n, nil
}

// deleteAttendance drops the row and unlinks notes pointing at it, like the
// ON DELETE SET NULL reference in postgres.
func deleteAttendance(t *tables, id uuid.UUID) {
	delete(t.attendance, id)

	for noteID, n := range t.notes {
		if n.AttendanceID != nil && *n.AttendanceID == id {
			n.AttendanceID = nil
			t.notes[noteID] = n
		}
	}
}

func checkAttendance(t *tables, a *models.Attendance) error {
	if _, ok := t.students[a.StudentID]; !ok {
		return response.WithDetail(response.ErrNotFound, "student not found")
	}

	if a.ScheduleID != nil {
		if _, ok := t.schedules[*a.ScheduleID]; !ok {
			return response.WithDetail(response.ErrNotFound, "schedule not found")
		}
	}

	if a.ScheduleID == nil || a.AttendanceDate == nil {
		return nil
	}

	for _, other := range t.attendance {
		if other.ID != a.ID && sameKey(other, a.StudentID, *a.ScheduleID, *a.AttendanceDate) {
			return response.WithDetail(response.ErrConflict, "attendance already exists for this student, schedule and date")
		}
	}

	return nil
}

func sameKey(a models.Attendance, studentID, scheduleID uuid.UUID, date time.Time) bool {
	return a.StudentID == studentID &&
		a.ScheduleID != nil && *a.ScheduleID == scheduleID &&
		a.AttendanceDate != nil && models.SameDate(*a.AttendanceDate, date)
}

func taughtOrRecordedBy(t *tables, a models.Attendance, teacherID uuid.UUID) bool {
	if a.RecordedBy != nil && *a.RecordedBy == teacherID {
		return true
	}
	if a.ScheduleID == nil {
		return false
	}
	sch, ok := t.schedules[*a.ScheduleID]
	return ok && sch.TeacherID == teacherID
}

// sortAttendance puts the latest rows first.
func sortAttendance(rows []models.Attendance) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if c := compareTimes(a.AttendanceDate, b.AttendanceDate); c != 0 {
			return c > 0
		}
		if c := compareTimes(a.RecordedAt, b.RecordedAt); c != 0 {
			return c > 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// compareTimes treats a missing time as the oldest.
func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}
