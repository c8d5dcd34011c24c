package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tutor-portal/api"
	"tutor-portal/internal/metrics"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

const statusAll = "All"

func (s *Service) CreateSchedule(ctx context.Context, teacherID uuid.UUID, req *api.ScheduleCreateRequest) (*api.ScheduleResponse, error) {
	const op = "service.CreateSchedule"

	loc, err := s.requestLocation(req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start, err := parseTime(req.StartTime, loc)
	if err != nil {
		return nil, badRequest(op, "start_time is not a valid date")
	}

	var end *time.Time
	if v := optionalString(req.EndTime); v != nil {
		t, err := parseTime(*v, loc)
		if err != nil {
			return nil, badRequest(op, "end_time is not a valid date")
		}
		end = &t
	}

	if end != nil && end.Before(start) {
		return nil, badRequest(op, "end_time must not be before start_time")
	}

	badge := models.BadgeUpcoming
	if req.StatusBadge != nil {
		badge = models.Badge(*req.StatusBadge)
	}

	now := s.now()
	studentIDs := dedupeIDs(req.StudentIDs)
	if len(studentIDs) == 0 {
		return nil, badRequest(op, "student_ids must contain at least one student")
	}

	sch := &models.Schedule{
		ID:              uuid.New(),
		TeacherID:       teacherID,
		Subject:         strings.TrimSpace(req.Subject),
		Topic:           strings.TrimSpace(req.Topic),
		LearningFocus:   optionalString(req.LearningFocus),
		Description:     optionalString(req.Description),
		StartTime:       &start,
		EndTime:         end,
		Location:        optionalString(req.Location),
		MeetingURL:      optionalString(req.MeetingURL),
		MaxParticipants: req.MaxParticipants,
		AttachmentsMeta: jsonColumn(req.AttachmentsMeta),
		StatusBadge:     badge,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.store.WithTx(ctx, func(repo Repository) error {
		return s.saveSchedule(ctx, repo, sch, &studentIDs, teacherID, true)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetSchedule(ctx, teacherID, sch.ID)
}

func (s *Service) UpdateSchedule(ctx context.Context, teacherID, id uuid.UUID, req *api.ScheduleUpdateRequest) (*api.ScheduleResponse, error) {
	const op = "service.UpdateSchedule"

	loc, err := s.requestLocation(req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.withScheduleLock(ctx, id, func() error {
		return s.store.WithTx(ctx, func(repo Repository) error {
			sch, err := ownedSchedule(ctx, repo, id, teacherID, false)
			if err != nil {
				return err
			}

			if err := applyScheduleUpdate(sch, req, loc); err != nil {
				return err
			}
			sch.UpdatedAt = s.now()

			var studentIDs *[]uuid.UUID
			if req.StudentIDs != nil {
				ids := dedupeIDs(*req.StudentIDs)
				studentIDs = &ids
			}

			return s.saveSchedule(ctx, repo, sch, studentIDs, teacherID, false)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetSchedule(ctx, teacherID, id)
}

func applyScheduleUpdate(sch *models.Schedule, req *api.ScheduleUpdateRequest, loc *time.Location) error {
	const op = "service.applyScheduleUpdate"

	if req.Subject != nil {
		sch.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Topic != nil {
		sch.Topic = strings.TrimSpace(*req.Topic)
	}
	if req.LearningFocus != nil {
		sch.LearningFocus = optionalString(req.LearningFocus)
	}
	if req.Description != nil {
		sch.Description = optionalString(req.Description)
	}
	if req.Location != nil {
		sch.Location = optionalString(req.Location)
	}
	if req.MeetingURL != nil {
		sch.MeetingURL = optionalString(req.MeetingURL)
	}
	if req.MaxParticipants != nil {
		sch.MaxParticipants = req.MaxParticipants
	}
	if req.StatusBadge != nil {
		sch.StatusBadge = models.Badge(*req.StatusBadge)
	}
	if req.AttachmentsMeta != nil {
		sch.AttachmentsMeta = jsonColumn(req.AttachmentsMeta)
	}

	if req.StartTime != nil {
		t, err := parseTime(*req.StartTime, loc)
		if err != nil {
			return badRequest(op, "start_time is not a valid date")
		}
		sch.StartTime = &t
	}
	if req.EndTime != nil {
		if v := optionalString(req.EndTime); v == nil {
			sch.EndTime = nil
		} else {
			t, err := parseTime(*v, loc)
			if err != nil {
				return badRequest(op, "end_time is not a valid date")
			}
			sch.EndTime = &t
		}
	}

	if sch.StartTime != nil && sch.EndTime != nil && sch.EndTime.Before(*sch.StartTime) {
		return badRequest(op, "end_time must not be before start_time")
	}

	return nil
}

// saveSchedule persists the schedule, then its roster, then reconciles the
// attendance rows and refreshes the badge. It must run inside a transaction.
// A nil studentIDs leaves the roster untouched and reconciles against the
// stored one.
func (s *Service) saveSchedule(ctx context.Context, repo Repository, sch *models.Schedule, studentIDs *[]uuid.UUID, teacherID uuid.UUID, isNew bool) error {
	const op = "service.saveSchedule"

	if studentIDs != nil {
		if err := ensureStudents(ctx, repo, *studentIDs); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		sch.StudentID = nil
		if len(*studentIDs) > 0 {
			primary := (*studentIDs)[0]
			sch.StudentID = &primary
		}
	}

	save := repo.UpdateSchedule
	if isNew {
		save = repo.CreateSchedule
	}
	if err := save(ctx, sch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var roster []uuid.UUID
	if studentIDs != nil {
		if err := repo.SyncRoster(ctx, sch.ID, *studentIDs); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		roster = *studentIDs
	} else {
		rosters, err := repo.Rosters(ctx, []uuid.UUID{sch.ID})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		roster = rosters[sch.ID]
	}

	if err := s.reconcileAttendance(ctx, repo, sch, roster, teacherID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.refreshBadge(ctx, repo, sch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func ensureStudents(ctx context.Context, repo Repository, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := repo.ListStudentsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	if len(found) != len(ids) {
		return response.WithDetail(response.ErrNotFound, "one or more students do not exist")
	}

	return nil
}

// refreshBadge recomputes the badge from the clock and writes it through the
// badge-only path. Locked schedules are left alone.
func (s *Service) refreshBadge(ctx context.Context, repo Repository, sch *models.Schedule) error {
	const op = "service.refreshBadge"

	if sch.Locked() {
		metrics.BadgeRefreshed.WithLabelValues("locked").Inc()
		return nil
	}

	badge := sch.ComputeBadge(s.now())
	if badge == sch.StatusBadge {
		metrics.BadgeRefreshed.WithLabelValues("unchanged").Inc()
		return nil
	}

	if err := repo.SetScheduleBadge(ctx, sch.ID, badge); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sch.StatusBadge = badge
	metrics.BadgeRefreshed.WithLabelValues("changed").Inc()

	return nil
}

func (s *Service) DeleteSchedule(ctx context.Context, teacherID, id uuid.UUID) error {
	const op = "service.DeleteSchedule"

	err := s.store.WithTx(ctx, func(repo Repository) error {
		if _, err := ownedSchedule(ctx, repo, id, teacherID, false); err != nil {
			return err
		}
		now := s.now()
		return repo.SetScheduleDeletedAt(ctx, id, &now)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) RestoreSchedule(ctx context.Context, teacherID, id uuid.UUID) (*api.ScheduleResponse, error) {
	const op = "service.RestoreSchedule"

	err := s.withScheduleLock(ctx, id, func() error {
		return s.store.WithTx(ctx, func(repo Repository) error {
			sch, err := ownedSchedule(ctx, repo, id, teacherID, true)
			if err != nil {
				return err
			}

			if sch.Deleted() {
				if err := repo.SetScheduleDeletedAt(ctx, id, nil); err != nil {
					return err
				}
				sch.DeletedAt = nil
			}

			return s.refreshBadge(ctx, repo, sch)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetSchedule(ctx, teacherID, id)
}

// SetScheduleStatus freezes the badge at the requested value, or unlocks it
// and lets the clock drive it again.
func (s *Service) SetScheduleStatus(ctx context.Context, teacherID, id uuid.UUID, req *api.ScheduleStatusRequest) (*api.ScheduleResponse, error) {
	const op = "service.SetScheduleStatus"

	lock := req.Locked == nil || *req.Locked
	if lock && req.StatusBadge == "" {
		return nil, badRequest(op, "status_badge is required to lock the status")
	}

	err := s.withScheduleLock(ctx, id, func() error {
		return s.store.WithTx(ctx, func(repo Repository) error {
			sch, err := ownedSchedule(ctx, repo, id, teacherID, false)
			if err != nil {
				return err
			}

			now := s.now()
			sch.UpdatedAt = now

			if lock {
				sch.StatusBadge = models.Badge(req.StatusBadge)
				sch.StatusLockedAt = &now
				return repo.UpdateSchedule(ctx, sch)
			}

			sch.StatusLockedAt = nil
			if err := repo.UpdateSchedule(ctx, sch); err != nil {
				return err
			}
			return s.refreshBadge(ctx, repo, sch)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetSchedule(ctx, teacherID, id)
}

func (s *Service) GetSchedule(ctx context.Context, teacherID, id uuid.UUID) (*api.ScheduleResponse, error) {
	const op = "service.GetSchedule"

	sch, err := ownedSchedule(ctx, s.store, id, teacherID, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := s.scheduleResponses(ctx, s.store, []models.Schedule{*sch})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &resp[0], nil
}

func (s *Service) ListSchedules(ctx context.Context, teacherID uuid.UUID, q api.ScheduleListQuery) (*api.ScheduleListResponse, error) {
	const op = "service.ListSchedules"

	mode := models.WithoutTrashed
	switch {
	case q.OnlyTrashed:
		mode = models.OnlyTrashed
	case q.WithTrashed:
		mode = models.WithTrashed
	}

	schedules, err := s.store.ListSchedules(ctx, models.ScheduleFilter{TeacherID: &teacherID, Trashed: mode})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	search := strings.TrimSpace(q.Search)

	filtered := make([]models.Schedule, 0, len(schedules))
	for _, sch := range schedules {
		if q.Status != "" && q.Status != statusAll && string(sch.ComputedStatus(now)) != q.Status {
			continue
		}
		if search != "" && !containsFold(sch.Subject, search) && !containsFold(sch.Topic, search) {
			continue
		}
		filtered = append(filtered, sch)
	}

	live := schedules
	if mode != models.WithoutTrashed {
		live, err = s.store.ListSchedules(ctx, models.ScheduleFilter{TeacherID: &teacherID})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	summary := make(map[string]int)
	for _, sch := range live {
		summary[string(sch.ComputedStatus(now))]++
	}

	data, err := s.scheduleResponses(ctx, s.store, filtered)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.ScheduleListResponse{Schedules: data, Summary: summary}, nil
}

// scheduleResponses attaches rosters and materials to schedules.
func (s *Service) scheduleResponses(ctx context.Context, repo Repository, schedules []models.Schedule) ([]api.ScheduleResponse, error) {
	out := make([]api.ScheduleResponse, 0, len(schedules))
	if len(schedules) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(schedules))
	for _, sch := range schedules {
		ids = append(ids, sch.ID)
	}

	rosters, err := repo.Rosters(ctx, ids)
	if err != nil {
		return nil, err
	}

	var studentIDs []uuid.UUID
	for _, roster := range rosters {
		studentIDs = append(studentIDs, roster...)
	}
	students, err := studentIndex(ctx, repo, studentIDs)
	if err != nil {
		return nil, err
	}

	materials, err := repo.ListMaterials(ctx, ids)
	if err != nil {
		return nil, err
	}
	bySchedule := make(map[uuid.UUID][]api.MaterialResponse)
	for _, m := range materials {
		bySchedule[m.ScheduleID] = append(bySchedule[m.ScheduleID], toMaterialResponse(m))
	}

	for _, sch := range schedules {
		refs := make([]api.StudentRef, 0, len(rosters[sch.ID]))
		for _, id := range rosters[sch.ID] {
			if st, ok := students[id]; ok {
				refs = append(refs, studentRef(st))
			}
		}

		mats := bySchedule[sch.ID]
		if mats == nil {
			mats = []api.MaterialResponse{}
		}

		out = append(out, api.ScheduleResponse{
			ID:              sch.ID,
			TeacherID:       sch.TeacherID,
			StudentID:       sch.StudentID,
			Subject:         sch.Subject,
			Topic:           sch.Topic,
			LearningFocus:   sch.LearningFocus,
			Description:     sch.Description,
			StartTime:       sch.StartTime,
			EndTime:         sch.EndTime,
			Location:        sch.Location,
			MeetingURL:      sch.MeetingURL,
			MaxParticipants: sch.MaxParticipants,
			AttachmentsMeta: rawJSON(sch.AttachmentsMeta),
			StatusBadge:     string(sch.StatusBadge),
			StatusColor:     sch.StatusBadge.Color(),
			StatusLockedAt:  sch.StatusLockedAt,
			Students:        refs,
			Materials:       mats,
			CreatedAt:       sch.CreatedAt,
			UpdatedAt:       sch.UpdatedAt,
			DeletedAt:       sch.DeletedAt,
		})
	}

	return out, nil
}

// requestLocation resolves the timezone naive request times are written in.
func (s *Service) requestLocation(tz *string) (*time.Location, error) {
	const op = "service.requestLocation"

	if tz == nil || strings.TrimSpace(*tz) == "" {
		return s.loc, nil
	}

	loc, err := time.LoadLocation(strings.TrimSpace(*tz))
	if err != nil {
		return nil, badRequest(op, fmt.Sprintf("timezone is not valid: %v", err))
	}

	return loc, nil
}
