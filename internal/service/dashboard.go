package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tutor-portal/api"
	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

const (
	dashboardUpcomingLimit = 5
	dashboardNotesLimit    = 5
)

func (s *Service) TeacherDashboard(ctx context.Context, teacherID uuid.UUID) (*api.TeacherDashboardResponse, error) {
	const op = "service.TeacherDashboard"

	schedules, err := s.store.ListSchedules(ctx, models.ScheduleFilter{TeacherID: &teacherID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	upcoming, err := s.dashboardSchedules(ctx, upcomingSchedules(schedules, s.now(), dashboardUpcomingLimit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.store.ListAttendance(ctx, models.AttendanceFilter{TeacherID: &teacherID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notes, err := s.store.ListNotes(ctx, models.NoteFilter{TeacherID: &teacherID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(notes) > dashboardNotesLimit {
		notes = notes[:dashboardNotesLimit]
	}

	recent, err := s.dashboardNotes(ctx, notes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.TeacherDashboardResponse{
		UpcomingSchedules: upcoming,
		AttendanceStats:   summaryResponse(models.SummarizeAttendance(rows)),
		RecentNotes:       recent,
	}, nil
}

// upcomingSchedules picks live schedules starting at or after now, soonest
// first.
func upcomingSchedules(schedules []models.Schedule, now time.Time, limit int) []models.Schedule {
	out := make([]models.Schedule, 0, limit)
	for _, sch := range schedules {
		if sch.Deleted() || sch.StartTime == nil || sch.StartTime.Before(now) {
			continue
		}
		out = append(out, sch)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(*out[j].StartTime)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Service) dashboardSchedules(ctx context.Context, schedules []models.Schedule) ([]api.DashboardSchedule, error) {
	out := make([]api.DashboardSchedule, 0, len(schedules))
	if len(schedules) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(schedules))
	for _, sch := range schedules {
		ids = append(ids, sch.ID)
	}

	rosters, err := s.store.Rosters(ctx, ids)
	if err != nil {
		return nil, err
	}

	var studentIDs []uuid.UUID
	for _, r := range rosters {
		studentIDs = append(studentIDs, r...)
	}
	students, err := studentIndex(ctx, s.store, studentIDs)
	if err != nil {
		return nil, err
	}

	for _, sch := range schedules {
		names := make([]string, 0, len(rosters[sch.ID]))
		for _, id := range rosters[sch.ID] {
			if st, ok := students[id]; ok {
				names = append(names, st.Name)
			}
		}

		item := api.DashboardSchedule{
			ID:          sch.ID,
			Subject:     sch.Subject,
			Topic:       sch.Topic,
			StartTime:   sch.StartTime,
			StatusBadge: string(sch.StatusBadge),
			StatusColor: sch.StatusBadge.Color(),
			Students:    names,
		}
		if sch.StartTime != nil {
			item.StartLabel = DateLabel(models.DateOf(*sch.StartTime, s.loc), s.locale) + " " + sch.StartTime.In(s.loc).Format("15:04")
		}

		out = append(out, item)
	}

	return out, nil
}

func (s *Service) dashboardNotes(ctx context.Context, notes []models.TeacherNote) ([]api.DashboardNote, error) {
	ids := make([]uuid.UUID, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.StudentID)
	}

	students, err := studentIndex(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	out := make([]api.DashboardNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, api.DashboardNote{
			ID:         n.ID,
			Title:      n.Title,
			Student:    students[n.StudentID].Name,
			Category:   string(n.Category),
			TagColor:   n.TagColor,
			RecordedAt: n.RecordedAt,
		})
	}

	return out, nil
}
