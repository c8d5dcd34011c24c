package service

import (
	"context"
	"fmt"
	"strings"

	"tutor-portal/api"
	"tutor-portal/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func (s *Service) ListUsers(ctx context.Context, q api.UserListQuery) (*api.UserListResponse, error) {
	const op = "service.ListUsers"

	users, err := s.store.ListUsers(ctx, models.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	search := strings.TrimSpace(q.Search)
	role := models.Role(strings.TrimSpace(q.Role))

	var stats api.UserStats
	data := make([]api.UserResponse, 0, len(users))
	for _, u := range users {
		stats.Total++
		if u.IsActive {
			stats.Active++
		}
		switch u.Role {
		case models.RoleAdmin, models.RoleTeacher:
			stats.Staff++
		case models.RoleParent:
			stats.Parents++
		}

		if role != "" && u.Role != role {
			continue
		}
		if search != "" &&
			!containsFold(u.Name, search) &&
			!containsFold(u.Email, search) &&
			!containsFold(deref(u.Phone), search) {
			continue
		}
		data = append(data, s.toUserResponse(u))
	}

	return &api.UserListResponse{Users: data, Stats: stats}, nil
}

func (s *Service) CreateUser(ctx context.Context, req *api.UserRequest) (*api.UserResponse, error) {
	const op = "service.CreateUser"

	password := deref(req.Password)
	if password == "" {
		return nil, badRequest(op, "password is required")
	}

	now := s.now()
	u := &models.User{ID: uuid.New(), CreatedAt: now, UpdatedAt: now, IsActive: true}
	applyUser(u, req)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.PasswordHash = string(hash)

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := s.toUserResponse(*u)
	return &resp, nil
}

// UpdateUser keeps the stored password unless a new one is given.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *api.UserRequest) (*api.UserResponse, error) {
	const op = "service.UpdateUser"

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	applyUser(u, req)
	if password := deref(req.Password); password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.PasswordHash = string(hash)
	}
	u.UpdatedAt = s.now()

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := s.toUserResponse(*u)
	return &resp, nil
}

// DeleteUser refuses to remove the caller's own account.
func (s *Service) DeleteUser(ctx context.Context, callerID, id uuid.UUID) error {
	const op = "service.DeleteUser"

	if callerID == id {
		return badRequest(op, "the signed-in account cannot delete itself")
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func applyUser(u *models.User, req *api.UserRequest) {
	u.Name = strings.TrimSpace(req.Name)
	u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	u.Phone = optionalString(req.Phone)
	u.Role = models.Role(req.Role)
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
}

func (s *Service) toUserResponse(u models.User) api.UserResponse {
	status := "inactive"
	if u.IsActive {
		status = "active"
	}

	return api.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		StatusLabel: StatusLabel(status, s.locale),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
