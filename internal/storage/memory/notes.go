package memory

import (
	"context"
	"fmt"
	"sort"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (r repo) GetNote(_ context.Context, id uuid.UUID) (*models.TeacherNote, error) {
	const op = "storage.memory.GetNote"

	var out models.TeacherNote
	err := r.read(func(t *tables) error {
		n, ok := t.notes[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r repo) GetNoteByAttendance(_ context.Context, attendanceID uuid.UUID) (*models.TeacherNote, error) {
	const op = "storage.memory.GetNoteByAttendance"

	var out *models.TeacherNote
	_ = r.read(func(t *tables) error {
		for _, n := range t.notes {
			if n.AttendanceID != nil && *n.AttendanceID == attendanceID {
				out = &n
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

func (r repo) ListNotes(_ context.Context, filter models.NoteFilter) ([]models.TeacherNote, error) {
	var out []models.TeacherNote

	_ = r.read(func(t *tables) error {
		for _, n := range t.notes {
			if filter.TeacherID != nil && n.TeacherID != *filter.TeacherID {
				continue
			}
			if filter.StudentID != nil && n.StudentID != *filter.StudentID {
				continue
			}
			if filter.Visibility != nil && n.Visibility != *filter.Visibility {
				continue
			}
			out = append(out, n)
		}
		return nil
	})

	// newest first
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	return out, nil
}

func (r repo) CreateNote(_ context.Context, note *models.TeacherNote) error {
	const op = "storage.memory.CreateNote"

	return r.write(func(t *tables) error {
		if _, ok := t.notes[note.ID]; ok {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if err := checkNote(t, note); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.notes[note.ID] = *note
		return nil
	})
}

func (r repo) UpdateNote(_ context.Context, note *models.TeacherNote) error {
	const op = "storage.memory.UpdateNote"

	return r.write(func(t *tables) error {
		if _, ok := t.notes[note.ID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		if err := checkNote(t, note); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.notes[note.ID] = *note
		return nil
	})
}

func (r repo) DeleteNote(_ context.Context, id uuid.UUID) error {
	const op = "storage.memory.DeleteNote"

	return r.write(func(t *tables) error {
		if _, ok := t.notes[id]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		delete(t.notes, id)
		return nil
	})
}

func (r repo) DeleteAttendanceNote(_ context.Context, attendanceID uuid.UUID) (int64, error) {
	var n int64

	_ = r.write(func(t *tables) error {
		for id, note := range t.notes {
			if note.AttendanceID != nil && *note.AttendanceID == attendanceID {
				delete(t.notes, id)
				n++
			}
		}
		return nil
	})

	return n, nil
}

func checkNote(t *tables, note *models.TeacherNote) error {
	if _, ok := t.students[note.StudentID]; !ok {
		return response.WithDetail(response.ErrNotFound, "student not found")
	}
	if _, ok := t.users[note.TeacherID]; !ok {
		return response.WithDetail(response.ErrNotFound, "teacher not found")
	}
	if note.ScheduleID != nil {
		if _, ok := t.schedules[*note.ScheduleID]; !ok {
			return response.WithDetail(response.ErrNotFound, "schedule not found")
		}
	}

	if note.AttendanceID == nil {
		return nil
	}

	if _, ok := t.attendance[*note.AttendanceID]; !ok {
		return response.WithDetail(response.ErrNotFound, "attendance not found")
	}
	for _, other := range t.notes {
		if other.ID != note.ID && other.AttendanceID != nil && *other.AttendanceID == *note.AttendanceID {
			return response.WithDetail(response.ErrConflict, "attendance already has a note")
		}
	}

	return nil
}
