package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (r repo) CreateSchedule(_ context.Context, schedule *models.Schedule) error {
	const op = "storage.memory.CreateSchedule"

	return r.write(func(t *tables) error {
		if _, ok := t.schedules[schedule.ID]; ok {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if err := checkSchedule(t, schedule); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.schedules[schedule.ID] = *schedule
		return nil
	})
}

func (r repo) UpdateSchedule(_ context.Context, schedule *models.Schedule) error {
	const op = "storage.memory.UpdateSchedule"

	return r.write(func(t *tables) error {
		if _, ok := t.schedules[schedule.ID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		if err := checkSchedule(t, schedule); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.schedules[schedule.ID] = *schedule
		return nil
	})
}

func (r repo) GetSchedule(_ context.Context, id uuid.UUID) (*models.Schedule, error) {
	const op = "storage.memory.GetSchedule"

	var out models.Schedule
	err := r.read(func(t *tables) error {
		sch, ok := t.schedules[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		out = sch
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r repo) ListSchedules(_ context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	var out []models.Schedule

	_ = r.read(func(t *tables) error {
		for _, sch := range t.schedules {
			if !filter.Trashed.Match(sch.DeletedAt) {
				continue
			}
			if filter.TeacherID != nil && sch.TeacherID != *filter.TeacherID {
				continue
			}
			if filter.StudentID != nil && !slices.Contains(t.rosters[sch.ID], *filter.StudentID) {
				continue
			}
			out = append(out, sch)
		}
		return nil
	})

	sortSchedules(out)
	return out, nil
}

func (r repo) ListSchedulesByIDs(_ context.Context, ids []uuid.UUID) ([]models.Schedule, error) {
	var out []models.Schedule

	_ = r.read(func(t *tables) error {
		for _, id := range ids {
			if sch, ok := t.schedules[id]; ok {
				out = append(out, sch)
			}
		}
		return nil
	})

	sortSchedules(out)
	return out, nil
}

func (r repo) SetScheduleDeletedAt(_ context.Context, id uuid.UUID, at *time.Time) error {
	const op = "storage.memory.SetScheduleDeletedAt"

	return r.write(func(t *tables) error {
		sch, ok := t.schedules[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		sch.DeletedAt = at
		t.schedules[id] = sch
		return nil
	})
}

func (r repo) SetScheduleBadge(_ context.Context, id uuid.UUID, badge models.Badge) error {
	const op = "storage.memory.SetScheduleBadge"

	return r.write(func(t *tables) error {
		sch, ok := t.schedules[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		sch.StatusBadge = badge
		t.schedules[id] = sch
		return nil
	})
}

func (r repo) SyncRoster(_ context.Context, scheduleID uuid.UUID, studentIDs []uuid.UUID) error {
	const op = "storage.memory.SyncRoster"

	return r.write(func(t *tables) error {
		if _, ok := t.schedules[scheduleID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		roster := make([]uuid.UUID, 0, len(studentIDs))
		for _, id := range studentIDs {
			if _, ok := t.students[id]; !ok {
				return fmt.Errorf("%s: %w", op, response.ErrNotFound)
			}
			if slices.Contains(roster, id) {
				continue
			}
			roster = append(roster, id)
		}

		if len(roster) == 0 {
			delete(t.rosters, scheduleID)
			return nil
		}

		t.rosters[scheduleID] = roster
		return nil
	})
}

func (r repo) Rosters(_ context.Context, scheduleIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(scheduleIDs))

	_ = r.read(func(t *tables) error {
		for _, id := range scheduleIDs {
			if roster, ok := t.rosters[id]; ok {
				out[id] = slices.Clone(roster)
			}
		}
		return nil
	})

	return out, nil
}

func checkSchedule(t *tables, schedule *models.Schedule) error {
	if _, ok := t.users[schedule.TeacherID]; !ok {
		return response.WithDetail(response.ErrNotFound, "teacher not found")
	}

	if schedule.StudentID != nil {
		if _, ok := t.students[*schedule.StudentID]; !ok {
			return response.WithDetail(response.ErrNotFound, "student not found")
		}
	}

	return nil
}

// sortSchedules orders by start time, schedules without one last.
func sortSchedules(schedules []models.Schedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		a, b := schedules[i].StartTime, schedules[j].StartTime
		switch {
		case a == nil && b == nil:
			break
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		}
		if !schedules[i].CreatedAt.Equal(schedules[j].CreatedAt) {
			return schedules[i].CreatedAt.Before(schedules[j].CreatedAt)
		}
		return schedules[i].ID.String() < schedules[j].ID.String()
	})
}
