package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (r repo) ListUsers(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	var out []models.User

	_ = r.read(func(t *tables) error {
		for _, u := range t.users {
			if filter.Role != nil && u.Role != *filter.Role {
				continue
			}
			out = append(out, u)
		}
		return nil
	})

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (r repo) UpdateUser(_ context.Context, user *models.User) error {
	const op = "storage.memory.UpdateUser"

	return r.write(func(t *tables) error {
		if _, ok := t.users[user.ID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		for _, u := range t.users {
			if u.ID != user.ID && strings.EqualFold(u.Email, user.Email) {
				return fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrConflict, "email is already taken"))
			}
		}

		t.users[user.ID] = *user
		return nil
	})
}

// DeleteUser mirrors the postgres references: ownership blocks the delete,
// the loose links are cleared.
func (r repo) DeleteUser(_ context.Context, id uuid.UUID) error {
	const op = "storage.memory.DeleteUser"

	return r.write(func(t *tables) error {
		if _, ok := t.users[id]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		if userIsReferenced(t, id) {
			return fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrConflict, "user is still referenced by other records"))
		}

		for sid, st := range t.students {
			if st.ParentID != nil && *st.ParentID == id {
				st.ParentID = nil
				t.students[sid] = st
			}
		}
		for aid, a := range t.attendance {
			if a.RecordedBy != nil && *a.RecordedBy == id {
				a.RecordedBy = nil
				t.attendance[aid] = a
			}
		}
		for lid, l := range t.loans {
			if l.UserID != nil && *l.UserID == id {
				l.UserID = nil
			}
			if l.IssuedBy != nil && *l.IssuedBy == id {
				l.IssuedBy = nil
			}
			t.loans[lid] = l
		}

		delete(t.users, id)
		return nil
	})
}

func userIsReferenced(t *tables, id uuid.UUID) bool {
	for _, sch := range t.schedules {
		if sch.TeacherID == id {
			return true
		}
	}
	for _, n := range t.notes {
		if n.TeacherID == id {
			return true
		}
	}
	for _, m := range t.materials {
		if m.UploadedBy == id {
			return true
		}
	}
	for _, n := range t.news {
		if n.AdminID == id {
			return true
		}
	}
	return false
}
