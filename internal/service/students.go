package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"tutor-portal/api"
	"tutor-portal/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	parentPasswordLength = 10
	passwordAlphabet     = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	educationUnknown     = "N/A"
)

func (s *Service) ListStudents(ctx context.Context, q api.StudentListQuery) (*api.StudentListResponse, error) {
	const op = "service.ListStudents"

	mode := models.WithoutTrashed
	switch {
	case q.OnlyTrashed:
		mode = models.OnlyTrashed
	case q.WithTrashed:
		mode = models.WithTrashed
	}

	students, err := s.store.ListStudents(ctx, models.StudentFilter{Trashed: mode})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	search := strings.TrimSpace(q.Search)

	data := make([]api.StudentResponse, 0, len(students))
	for _, st := range students {
		if search != "" &&
			!containsFold(st.Code, search) &&
			!containsFold(st.Name, search) &&
			!containsFold(deref(st.EducationLevel), search) {
			continue
		}
		data = append(data, toStudentResponse(st))
	}

	live, err := s.store.ListStudents(ctx, models.StudentFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.StudentListResponse{Students: data, Stats: studentStats(live)}, nil
}

func studentStats(students []models.Student) api.StudentStats {
	stats := api.StudentStats{Total: len(students), MostEducation: educationUnknown}

	levels := make(map[string]int)
	for _, st := range students {
		switch st.Status {
		case models.StudentActive:
			stats.Active++
		case models.StudentInactive:
			stats.Inactive++
		}
		if lvl := strings.TrimSpace(deref(st.EducationLevel)); lvl != "" {
			levels[lvl]++
		}
	}

	names := make([]string, 0, len(levels))
	for lvl := range levels {
		names = append(names, lvl)
	}
	// ties resolve alphabetically so the answer is stable
	sort.Slice(names, func(i, j int) bool {
		if levels[names[i]] != levels[names[j]] {
			return levels[names[i]] > levels[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 0 {
		stats.MostEducation = names[0]
	}

	return stats
}

// CreateStudent stores a new student. Without an explicit code the next SW
// number is taken, soft-deleted students included. When asked it also creates
// the parent account and returns its one-time password.
func (s *Service) CreateStudent(ctx context.Context, req *api.StudentRequest) (*api.StudentSaveResponse, error) {
	const op = "service.CreateStudent"

	now := s.now()
	st := &models.Student{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.applyStudent(ctx, st, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var account *api.ParentAccount

	err := s.store.WithTx(ctx, func(repo Repository) error {
		if code := optionalString(req.Code); code != nil {
			st.Code = *code
		} else {
			code, err := nextStudentCode(ctx, repo)
			if err != nil {
				return err
			}
			st.Code = code
		}

		if req.CreateParentAccount {
			parent, password, err := s.newParentUser(req)
			if err != nil {
				return err
			}
			if err := repo.CreateUser(ctx, parent); err != nil {
				return err
			}
			st.ParentID = &parent.ID
			account = &api.ParentAccount{Email: parent.Email, Password: password}
		}

		return repo.CreateStudent(ctx, st)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.StudentSaveResponse{Student: toStudentResponse(*st), ParentAccount: account}, nil
}

func (s *Service) UpdateStudent(ctx context.Context, id uuid.UUID, req *api.StudentRequest) (*api.StudentSaveResponse, error) {
	const op = "service.UpdateStudent"

	st, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.applyStudent(ctx, st, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if code := optionalString(req.Code); code != nil {
		st.Code = *code
	}
	st.UpdatedAt = s.now()

	var account *api.ParentAccount

	err = s.store.WithTx(ctx, func(repo Repository) error {
		if req.CreateParentAccount {
			parent, password, err := s.newParentUser(req)
			if err != nil {
				return err
			}
			if err := repo.CreateUser(ctx, parent); err != nil {
				return err
			}
			st.ParentID = &parent.ID
			account = &api.ParentAccount{Email: parent.Email, Password: password}
		}

		return repo.UpdateStudent(ctx, st)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.StudentSaveResponse{Student: toStudentResponse(*st), ParentAccount: account}, nil
}

func (s *Service) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	const op = "service.DeleteStudent"

	st, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if st.DeletedAt != nil {
		return nil
	}

	now := s.now()
	if err := s.store.SetStudentDeletedAt(ctx, id, &now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) RestoreStudent(ctx context.Context, id uuid.UUID) (*api.StudentResponse, error) {
	const op = "service.RestoreStudent"

	st, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if st.DeletedAt != nil {
		if err := s.store.SetStudentDeletedAt(ctx, id, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		st.DeletedAt = nil
	}

	resp := toStudentResponse(*st)
	return &resp, nil
}

func (s *Service) applyStudent(ctx context.Context, st *models.Student, req *api.StudentRequest) error {
	const op = "service.applyStudent"

	st.Name = strings.TrimSpace(req.Name)
	st.Status = req.Status
	st.EducationLevel = optionalString(req.EducationLevel)
	st.SchoolName = optionalString(req.SchoolName)
	st.Address = optionalString(req.Address)

	st.DateOfBirth = nil
	if v := optionalString(req.DateOfBirth); v != nil {
		dob, err := parseDate(*v, s.loc)
		if err != nil {
			return badRequest(op, "date_of_birth is not a valid date")
		}
		if !dob.Before(models.DateOf(s.now(), s.loc)) {
			return badRequest(op, "date_of_birth must be before today")
		}
		st.DateOfBirth = &dob
	}

	if req.CreateParentAccount {
		return nil
	}

	st.ParentID = nil
	if req.ParentID != nil {
		parent, err := s.store.GetUser(ctx, *req.ParentID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if parent.Role != models.RoleParent {
			return badRequest(op, "parent_id must reference a parent account")
		}
		st.ParentID = &parent.ID
	}

	return nil
}

func (s *Service) newParentUser(req *api.StudentRequest) (*models.User, string, error) {
	const op = "service.newParentUser"

	password, err := randomPassword(parentPasswordLength)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	return &models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(deref(req.NewParentName)),
		Email:        strings.ToLower(strings.TrimSpace(deref(req.NewParentEmail))),
		Phone:        optionalString(req.NewParentPhone),
		Role:         models.RoleParent,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, password, nil
}

func nextStudentCode(ctx context.Context, repo Repository) (string, error) {
	codes, err := repo.ListStudentCodes(ctx)
	if err != nil {
		return "", err
	}

	last := 0
	for _, code := range codes {
		if n, ok := models.ParseStudentCode(code); ok && n > last {
			last = n
		}
	}

	return models.StudentCode(last + 1), nil
}

func randomPassword(n int) (string, error) {
	return randomString(n, passwordAlphabet)
}

func randomString(n int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))

	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}

	return string(b), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
