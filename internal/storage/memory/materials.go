package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (r repo) GetMaterial(_ context.Context, id uuid.UUID) (*models.Material, error) {
	const op = "storage.memory.GetMaterial"

	var out models.Material
	err := r.read(func(t *tables) error {
		m, ok := t.materials[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r repo) ListMaterials(_ context.Context, scheduleIDs []uuid.UUID) ([]models.Material, error) {
	var out []models.Material

	_ = r.read(func(t *tables) error {
		for _, m := range t.materials {
			if slices.Contains(scheduleIDs, m.ScheduleID) {
				out = append(out, m)
			}
		}
		return nil
	})

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	return out, nil
}

func (r repo) CreateMaterial(_ context.Context, material *models.Material) error {
	const op = "storage.memory.CreateMaterial"

	return r.write(func(t *tables) error {
		if _, ok := t.materials[material.ID]; ok {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if _, ok := t.schedules[material.ScheduleID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		t.materials[material.ID] = *material
		return nil
	})
}

func (r repo) UpdateMaterial(_ context.Context, material *models.Material) error {
	const op = "storage.memory.UpdateMaterial"

	return r.write(func(t *tables) error {
		if _, ok := t.materials[material.ID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		t.materials[material.ID] = *material
		return nil
	})
}

func (r repo) DeleteMaterial(_ context.Context, id uuid.UUID) error {
	const op = "storage.memory.DeleteMaterial"

	return r.write(func(t *tables) error {
		if _, ok := t.materials[id]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		delete(t.materials, id)
		return nil
	})
}
