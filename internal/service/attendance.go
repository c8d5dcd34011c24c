package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"tutor-portal/api"
	"tutor-portal/internal/metrics"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

// RecordAttendance upserts the row for (student, schedule, date) and mirrors
// its note in the same transaction.
func (s *Service) RecordAttendance(ctx context.Context, teacherID uuid.UUID, req *api.AttendanceRequest) (*api.AttendanceResponse, error) {
	const op = "service.RecordAttendance"

	sch, err := ownedSchedule(ctx, s.store, req.ScheduleID, teacherID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if notStarted(sch, now) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrScheduleNotStarted)
	}

	if _, err := s.store.GetStudent(ctx, req.StudentID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	date := models.DateOf(now, s.loc)
	switch {
	case optionalString(req.AttendanceDate) != nil:
		date, err = parseDate(*req.AttendanceDate, s.loc)
		if err != nil {
			return nil, badRequest(op, "attendance_date is not a valid date")
		}
	case sch.StartTime != nil:
		date = models.DateOf(*sch.StartTime, s.loc)
	}

	recordedAt := now
	if v := optionalString(req.RecordedAt); v != nil {
		recordedAt, err = parseTime(*v, s.loc)
		if err != nil {
			return nil, badRequest(op, "recorded_at is not a valid date")
		}
	}

	topic := optionalString(req.SessionTopic)
	if topic == nil {
		if label := SubjectLabel(sch.Subject, sch.Topic); label != "" {
			topic = &label
		}
	}

	timeLabel := optionalString(req.SessionTime)
	if timeLabel == nil && sch.StartTime != nil && sch.EndTime != nil {
		timeLabel = SessionTimeLabel(sch.StartTime, sch.EndTime, s.loc)
	}

	channel := optionalString(req.InputChannel)
	if channel == nil {
		web := models.InputChannelWeb
		channel = &web
	}

	status := models.NormalizeAttendanceStatus(req.Status)

	var saved models.Attendance

	// Writers for different students never block each other. Two writers
	// racing on the same row hit the unique natural key; the loser retries
	// once and then finds the row to update.
	for attempt := 0; attempt < 2; attempt++ {
		err = s.store.WithTx(ctx, func(repo Repository) error {
			row, err := repo.FindAttendance(ctx, req.StudentID, sch.ID, date)
			isNew := isNotFound(err)
			if err != nil && !isNew {
				return err
			}

			if isNew {
				scheduleID := sch.ID
				row = &models.Attendance{
					ID:         uuid.New(),
					StudentID:  req.StudentID,
					ScheduleID: &scheduleID,
					CreatedAt:  now,
				}
			}

			recordedBy := teacherID
			row.RecordedBy = &recordedBy
			row.AttendanceDate = &date
			row.RecordedAt = &recordedAt
			row.Status = &status
			row.SessionTopic = topic
			row.SessionTime = timeLabel
			row.InputChannel = channel
			if req.Notes != nil {
				row.Notes = req.Notes
			}
			if req.RequiresFollowUp != nil {
				row.RequiresFollowUp = *req.RequiresFollowUp
			}
			if req.Meta != nil {
				row.Meta = jsonColumn(req.Meta)
			}
			row.UpdatedAt = now

			if isNew {
				err = repo.CreateAttendance(ctx, row)
			} else {
				err = repo.UpdateAttendance(ctx, row)
			}
			if err != nil {
				return err
			}

			if err := s.syncAttendanceNote(ctx, repo, row, sch, teacherID); err != nil {
				return err
			}

			saved = *row
			return nil
		})
		if !errors.Is(err, response.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	students, schedules, err := attendanceRefs(ctx, s.store, []models.Attendance{saved})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := toAttendanceResponse(saved, students, schedules)
	return &resp, nil
}

// syncAttendanceNote keeps the one teacher note mirrored from an attendance
// row in step with its free text: upserted while non-empty, deleted once the
// text is blank.
func (s *Service) syncAttendanceNote(ctx context.Context, repo Repository, a *models.Attendance, sch *models.Schedule, teacherID uuid.UUID) error {
	const op = "service.syncAttendanceNote"

	text := strings.TrimSpace(deref(a.Notes))

	if text == "" {
		n, err := repo.DeleteAttendanceNote(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		metrics.AttendanceNotesSynced.WithLabelValues(metrics.ActionDeleted).Add(float64(n))
		return nil
	}

	now := s.now()
	recordedAt := now
	if a.RecordedAt != nil {
		recordedAt = *a.RecordedAt
	}

	note, err := repo.GetNoteByAttendance(ctx, a.ID)
	isNew := isNotFound(err)
	if err != nil && !isNew {
		return fmt.Errorf("%s: %w", op, err)
	}

	if isNew {
		attendanceID := a.ID
		note = &models.TeacherNote{
			ID:           uuid.New(),
			AttendanceID: &attendanceID,
			CreatedAt:    now,
		}
	}

	note.StudentID = a.StudentID
	note.ScheduleID = a.ScheduleID
	note.TeacherID = teacherID
	note.Title = s.AttendanceNoteTitle(a, sch)
	note.Note = text
	note.Category = models.CategoryGeneral
	note.Visibility = models.VisibilityParent
	note.RecordedAt = recordedAt
	note.UpdatedAt = now

	if isNew {
		err = repo.CreateNote(ctx, note)
	} else {
		err = repo.UpdateNote(ctx, note)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	action := metrics.ActionUpdated
	if isNew {
		action = metrics.ActionCreated
	}
	metrics.AttendanceNotesSynced.WithLabelValues(action).Inc()

	return nil
}

// DeleteAttendance removes the row together with its mirrored note.
func (s *Service) DeleteAttendance(ctx context.Context, teacherID, id uuid.UUID) error {
	const op = "service.DeleteAttendance"

	row, err := s.store.GetAttendance(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if row.ScheduleID == nil {
		return fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrNotFound, "schedule not found"))
	}

	sch, err := ownedSchedule(ctx, s.store, *row.ScheduleID, teacherID, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if notStarted(sch, s.now()) {
		return fmt.Errorf("%s: %w", op, response.ErrScheduleNotStarted)
	}

	err = s.store.WithTx(ctx, func(repo Repository) error {
		if _, err := repo.DeleteAttendanceNote(ctx, id); err != nil {
			return err
		}
		return repo.DeleteAttendance(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func notStarted(sch *models.Schedule, now time.Time) bool {
	return sch.StartTime != nil && sch.StartTime.After(now)
}

// ListAttendance returns the teacher's attendance for one day with the
// normalized summary, the subject labels seen that day and, when a subject is
// selected, the countdown to its session.
func (s *Service) ListAttendance(ctx context.Context, teacherID uuid.UUID, q api.AttendanceListQuery) (*api.AttendanceListResponse, error) {
	const op = "service.ListAttendance"

	now := s.now()

	date := models.DateOf(now, s.loc)
	if strings.TrimSpace(q.ScheduleDate) != "" {
		// unparseable dates fall back to today
		if d, err := parseDate(q.ScheduleDate, s.loc); err == nil {
			date = d
		}
	}

	subject := strings.TrimSpace(q.Subject)
	if subject == statusAll {
		subject = ""
	}

	rows, err := s.store.ListAttendance(ctx, models.AttendanceFilter{
		TeacherID:  &teacherID,
		ScheduleID: q.ScheduleID,
		Date:       &date,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	students, schedules, err := attendanceRefs(ctx, s.store, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	search := strings.TrimSpace(q.Search)
	status := strings.TrimSpace(q.Status)

	filtered := make([]models.Attendance, 0, len(rows))
	for _, row := range rows {
		var sch *models.Schedule
		if row.ScheduleID != nil {
			if v, ok := schedules[*row.ScheduleID]; ok {
				sch = &v
			}
		}

		if status != "" && status != statusAll {
			if row.Status == nil || !strings.EqualFold(string(*row.Status), status) {
				continue
			}
		}

		if search != "" && !matchAttendanceSearch(row, students[row.StudentID], sch, search) {
			continue
		}

		if subject != "" && !matchAttendanceSubject(row, sch, subject) {
			continue
		}

		filtered = append(filtered, row)
	}

	daySchedules, err := s.store.ListSchedules(ctx, models.ScheduleFilter{TeacherID: &teacherID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var subjects []string
	var window *api.ScheduleWindow

	for _, sch := range daySchedules {
		if sch.StartTime == nil || !models.SameDate(models.DateOf(*sch.StartTime, s.loc), date) {
			continue
		}
		label := SubjectLabel(sch.Subject, sch.Topic)
		if label != "" {
			subjects = append(subjects, label)
		}
		if subject != "" && window == nil && label == subject {
			window = scheduleWindow(sch, label, now)
		}
	}

	// the rows list was not narrowed by subject, it is the whole day
	for _, row := range rows {
		if row.ScheduleID == nil {
			continue
		}
		sch, ok := schedules[*row.ScheduleID]
		if !ok || sch.Deleted() {
			continue
		}
		label := SubjectLabel(sch.Subject, sch.Topic)
		if label == "" {
			label = deref(row.SessionTopic)
		}
		if label != "" {
			subjects = append(subjects, label)
		}
	}

	slices.Sort(subjects)
	subjects = slices.Compact(subjects)
	if subjects == nil {
		subjects = []string{}
	}

	records := make([]api.AttendanceResponse, 0, len(filtered))
	for _, row := range filtered {
		records = append(records, toAttendanceResponse(row, students, schedules))
	}

	return &api.AttendanceListResponse{
		Records:        records,
		Summary:        summaryResponse(models.SummarizeAttendance(filtered)),
		Subjects:       subjects,
		ScheduleDate:   date.Format(api.DateLayout),
		ScheduleWindow: window,
	}, nil
}

func matchAttendanceSearch(row models.Attendance, st models.Student, sch *models.Schedule, term string) bool {
	if containsFold(st.Name, term) ||
		containsFold(deref(row.SessionTopic), term) ||
		containsFold(deref(row.Notes), term) {
		return true
	}
	return sch != nil && containsFold(sch.Topic, term)
}

func matchAttendanceSubject(row models.Attendance, sch *models.Schedule, subject string) bool {
	if deref(row.SessionTopic) == subject {
		return true
	}
	if sch == nil {
		return false
	}
	return SubjectLabel(sch.Subject, sch.Topic) == subject || sch.Subject == subject || sch.Topic == subject
}

func scheduleWindow(sch models.Schedule, label string, now time.Time) *api.ScheduleWindow {
	if sch.StartTime == nil {
		return nil
	}

	until := int64(sch.StartTime.Sub(now) / time.Second)
	if until < 0 {
		until = 0
	}

	return &api.ScheduleWindow{
		StartsAt:      *sch.StartTime,
		SecondsUntil:  until,
		ScheduleLabel: label,
	}
}
