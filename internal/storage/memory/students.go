package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (r repo) CreateUser(_ context.Context, user *models.User) error {
	const op = "storage.memory.CreateUser"

	return r.write(func(t *tables) error {
		if _, ok := t.users[user.ID]; ok {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		for _, u := range t.users {
			if strings.EqualFold(u.Email, user.Email) {
				return fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrConflict, "email is already taken"))
			}
		}

		t.users[user.ID] = *user
		return nil
	})
}

func (r repo) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.memory.GetUser"

	var out models.User
	err := r.read(func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r repo) GetStudent(_ context.Context, id uuid.UUID) (*models.Student, error) {
	const op = "storage.memory.GetStudent"

	var out models.Student
	err := r.read(func(t *tables) error {
		st, ok := t.students[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r repo) ListStudents(_ context.Context, filter models.StudentFilter) ([]models.Student, error) {
	var out []models.Student

	_ = r.read(func(t *tables) error {
		for _, st := range t.students {
			if !filter.Trashed.Match(st.DeletedAt) {
				continue
			}
			if filter.ParentID != nil && (st.ParentID == nil || *st.ParentID != *filter.ParentID) {
				continue
			}
			out = append(out, st)
		}
		return nil
	})

	sortStudents(out)
	return out, nil
}

func (r repo) ListStudentsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Student, error) {
	var out []models.Student

	_ = r.read(func(t *tables) error {
		for _, id := range ids {
			if st, ok := t.students[id]; ok {
				out = append(out, st)
			}
		}
		return nil
	})

	sortStudents(out)
	return out, nil
}

func (r repo) ListStudentCodes(_ context.Context) ([]string, error) {
	var out []string

	_ = r.read(func(t *tables) error {
		for _, st := range t.students {
			out = append(out, st.Code)
		}
		return nil
	})

	sort.Strings(out)
	return out, nil
}

func (r repo) CreateStudent(_ context.Context, student *models.Student) error {
	const op = "storage.memory.CreateStudent"

	return r.write(func(t *tables) error {
		if _, ok := t.students[student.ID]; ok {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if err := checkStudent(t, student); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.students[student.ID] = *student
		return nil
	})
}

func (r repo) UpdateStudent(_ context.Context, student *models.Student) error {
	const op = "storage.memory.UpdateStudent"

	return r.write(func(t *tables) error {
		if _, ok := t.students[student.ID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		if err := checkStudent(t, student); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.students[student.ID] = *student
		return nil
	})
}

func (r repo) SetStudentDeletedAt(_ context.Context, id uuid.UUID, at *time.Time) error {
	const op = "storage.memory.SetStudentDeletedAt"

	return r.write(func(t *tables) error {
		st, ok := t.students[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		st.DeletedAt = at
		t.students[id] = st
		return nil
	})
}

// checkStudent enforces the unique code and the parent reference.
func checkStudent(t *tables, student *models.Student) error {
	for _, other := range t.students {
		if other.ID != student.ID && other.Code == student.Code {
			return response.WithDetail(response.ErrConflict, "student_code is already taken")
		}
	}

	if student.ParentID != nil {
		if _, ok := t.users[*student.ParentID]; !ok {
			return response.WithDetail(response.ErrNotFound, "parent not found")
		}
	}

	return nil
}

func sortStudents(students []models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].Code < students[j].Code
	})
}
