package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"tutor-portal/api"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

const (
	parentRateWindow       = 30
	parentUpcomingLimit    = 3
	parentRecentLimit      = 5
	parentLatestNotesLimit = 5
)

// resolveChild picks the requested child of the parent, or the first child by
// name when none is requested or the requested one belongs to someone else.
func (s *Service) resolveChild(ctx context.Context, parentID uuid.UUID, studentID *uuid.UUID) (*models.Student, error) {
	const op = "service.resolveChild"

	children, err := s.store.ListStudents(ctx, models.StudentFilter{ParentID: &parentID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(children) == 0 {
		return nil, fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrNotFound, "no student is linked to this account"))
	}

	if studentID != nil {
		for i := range children {
			if children[i].ID == *studentID {
				return &children[i], nil
			}
		}
	}

	return &children[0], nil
}

func (s *Service) ParentDashboard(ctx context.Context, parentID uuid.UUID, studentID *uuid.UUID) (*api.ParentDashboardResponse, error) {
	const op = "service.ParentDashboard"

	child, err := s.resolveChild(ctx, parentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()

	rows, err := s.store.ListAttendance(ctx, models.AttendanceFilter{StudentID: &child.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schedules, err := s.store.ListSchedules(ctx, models.ScheduleFilter{StudentID: &child.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notes, err := s.parentNotes(ctx, child.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sessionsThisMonth := 0
	for _, sch := range schedules {
		if sch.StartTime != nil && sameMonth(*sch.StartTime, now, s.loc) {
			sessionsThisMonth++
		}
	}

	notesThisMonth := 0
	for _, n := range notes {
		if sameMonth(n.RecordedAt, now, s.loc) {
			notesThisMonth++
		}
	}

	upcoming, err := s.dashboardSchedules(ctx, upcomingSchedules(schedules, now, parentUpcomingLimit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := api.ParentSummary{
		AttendanceRate:    attendanceRate(head(rows, parentRateWindow)),
		SessionsThisMonth: sessionsThisMonth,
		NotesThisMonth:    notesThisMonth,
	}
	if len(upcoming) > 0 {
		next := upcoming[0]
		summary.NextSchedule = &next
	}

	latestNotes, err := s.noteResponses(ctx, head(notes, parentLatestNotesLimit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	recent := head(rows, parentRecentLimit)
	students, scheduleRefs, err := attendanceRefs(ctx, s.store, recent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	attendances := make([]api.AttendanceResponse, 0, len(recent))
	for _, row := range recent {
		attendances = append(attendances, toAttendanceResponse(row, students, scheduleRefs))
	}

	return &api.ParentDashboardResponse{
		Student:     toStudentResponse(*child),
		Summary:     summary,
		Notes:       latestNotes,
		Schedules:   upcoming,
		Attendances: attendances,
	}, nil
}

func (s *Service) ParentSchedules(ctx context.Context, parentID uuid.UUID, studentID *uuid.UUID, status, search string) (*api.ParentSchedulesResponse, error) {
	const op = "service.ParentSchedules"

	child, err := s.resolveChild(ctx, parentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schedules, err := s.store.ListSchedules(ctx, models.ScheduleFilter{StudentID: &child.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status = strings.TrimSpace(status)
	search = strings.TrimSpace(search)

	filtered := make([]models.Schedule, 0, len(schedules))
	for _, sch := range schedules {
		if status != "" && status != statusAll && !strings.EqualFold(string(sch.StatusBadge), status) {
			continue
		}
		if search != "" && !containsFold(sch.Subject, search) && !containsFold(sch.Topic, search) {
			continue
		}
		filtered = append(filtered, sch)
	}

	data, err := s.dashboardSchedules(ctx, filtered)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.ParentSchedulesResponse{Student: toStudentResponse(*child), Schedules: data}, nil
}

func (s *Service) ParentNotes(ctx context.Context, parentID uuid.UUID, studentID *uuid.UUID, category, search string) (*api.ParentNotesResponse, error) {
	const op = "service.ParentNotes"

	child, err := s.resolveChild(ctx, parentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notes, err := s.parentNotes(ctx, child.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	category = strings.TrimSpace(category)
	search = strings.TrimSpace(search)

	filtered := make([]models.TeacherNote, 0, len(notes))
	for _, n := range notes {
		if category != "" && string(n.Category) != category {
			continue
		}
		if search != "" && !containsFold(n.Title, search) && !containsFold(n.Note, search) {
			continue
		}
		filtered = append(filtered, n)
	}

	data, err := s.noteResponses(ctx, filtered)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.ParentNotesResponse{Student: toStudentResponse(*child), Notes: data}, nil
}

func (s *Service) parentNotes(ctx context.Context, studentID uuid.UUID) ([]models.TeacherNote, error) {
	visibility := models.VisibilityParent
	return s.store.ListNotes(ctx, models.NoteFilter{StudentID: &studentID, Visibility: &visibility})
}

// attendanceRate is the share of Present rows in percent, one decimal.
func attendanceRate(rows []models.Attendance) float64 {
	if len(rows) == 0 {
		return 0
	}

	present := models.SummarizeAttendance(rows).Present
	rate := float64(present) / float64(len(rows)) * 100

	return math.Round(rate*10) / 10
}

func sameMonth(a, b time.Time, loc *time.Location) bool {
	ay, am, _ := a.In(loc).Date()
	by, bm, _ := b.In(loc).Date()
	return ay == by && am == bm
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
