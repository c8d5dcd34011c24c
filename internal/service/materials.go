package service

import (
	"context"
	"fmt"
	"strings"

	"tutor-portal/api"
	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

func (s *Service) CreateMaterial(ctx context.Context, teacherID, scheduleID uuid.UUID, req *api.MaterialRequest) (*api.MaterialResponse, error) {
	const op = "service.CreateMaterial"

	if _, err := ownedSchedule(ctx, s.store, scheduleID, teacherID, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	m := &models.Material{
		ID:         uuid.New(),
		ScheduleID: scheduleID,
		UploadedBy: teacherID,
		Status:     models.MaterialStatusUploaded,
		Visibility: models.MaterialVisibilityInternal,
		CreatedAt:  now,
	}
	applyMaterial(m, req)
	m.UpdatedAt = now

	if err := s.store.CreateMaterial(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := toMaterialResponse(*m)
	return &resp, nil
}

func (s *Service) UpdateMaterial(ctx context.Context, teacherID, id uuid.UUID, req *api.MaterialRequest) (*api.MaterialResponse, error) {
	const op = "service.UpdateMaterial"

	m, err := s.ownedMaterial(ctx, teacherID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	applyMaterial(m, req)
	m.UpdatedAt = s.now()

	if err := s.store.UpdateMaterial(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := toMaterialResponse(*m)
	return &resp, nil
}

func (s *Service) DeleteMaterial(ctx context.Context, teacherID, id uuid.UUID) error {
	const op = "service.DeleteMaterial"

	if _, err := s.ownedMaterial(ctx, teacherID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.DeleteMaterial(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ownedMaterial checks ownership through the material's schedule.
func (s *Service) ownedMaterial(ctx context.Context, teacherID, id uuid.UUID) (*models.Material, error) {
	m, err := s.store.GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := ownedSchedule(ctx, s.store, m.ScheduleID, teacherID, true); err != nil {
		return nil, err
	}

	return m, nil
}

func applyMaterial(m *models.Material, req *api.MaterialRequest) {
	m.Title = strings.TrimSpace(req.Title)
	if req.Description != nil {
		m.Description = optionalString(req.Description)
	}
	if v := optionalString(req.Status); v != nil {
		m.Status = *v
	}
	if req.DownloadURL != nil {
		m.DownloadURL = optionalString(req.DownloadURL)
	}
	if v := optionalString(req.Visibility); v != nil {
		m.Visibility = *v
	}
	if req.Labels != nil {
		m.Labels = jsonColumn(req.Labels)
	}
}
