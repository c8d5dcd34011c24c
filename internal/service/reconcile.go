package service

import (
	"context"
	"fmt"
	"time"

	"tutor-portal/internal/metrics"
	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

// reconcileAttendance makes the schedule's attendance rows match roster: one
// row per student, rows of removed students deleted. Existing rows only get
// their labels refreshed and missing date fields backfilled, so recorded
// statuses survive. Running it twice with the same input writes nothing the
// second time.
func (s *Service) reconcileAttendance(ctx context.Context, repo Repository, sch *models.Schedule, roster []uuid.UUID, teacherID uuid.UUID) error {
	const op = "service.reconcileAttendance"

	if len(roster) == 0 {
		n, err := repo.DeleteScheduleAttendance(ctx, sch.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		metrics.AttendanceReconciled.WithLabelValues(metrics.ActionDeleted).Add(float64(n))
		return nil
	}

	existing, err := repo.ListAttendance(ctx, models.AttendanceFilter{ScheduleID: &sch.ID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	recordedAt := now
	if sch.StartTime != nil {
		recordedAt = *sch.StartTime
	}
	date := models.DateOf(recordedAt, s.loc)
	topic := SessionTopicLabel(sch.Subject, sch.Topic)
	timeLabel := SessionTimeLabel(sch.StartTime, sch.EndTime, s.loc)

	wanted := make(map[uuid.UUID]struct{}, len(roster))
	for _, id := range roster {
		wanted[id] = struct{}{}
	}

	// a student may hold rows for several dates; the row on the session date
	// wins, otherwise the first one listed
	current := make(map[uuid.UUID]*models.Attendance, len(existing))
	for i := range existing {
		row := &existing[i]

		if _, ok := wanted[row.StudentID]; !ok {
			if err := repo.DeleteAttendance(ctx, row.ID); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			metrics.AttendanceReconciled.WithLabelValues(metrics.ActionDeleted).Inc()
			continue
		}

		prev, ok := current[row.StudentID]
		if !ok || (!onDate(prev, date) && onDate(row, date)) {
			current[row.StudentID] = row
		}
	}

	for _, studentID := range roster {
		row, ok := current[studentID]
		if !ok {
			scheduleID := sch.ID
			recordedBy := teacherID
			rowDate := date
			rowRecordedAt := recordedAt

			created := &models.Attendance{
				ID:             uuid.New(),
				StudentID:      studentID,
				ScheduleID:     &scheduleID,
				RecordedBy:     &recordedBy,
				AttendanceDate: &rowDate,
				RecordedAt:     &rowRecordedAt,
				SessionTopic:   topic,
				SessionTime:    timeLabel,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := repo.CreateAttendance(ctx, created); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			metrics.AttendanceReconciled.WithLabelValues(metrics.ActionCreated).Inc()
			continue
		}

		changed := false
		if row.AttendanceDate == nil {
			rowDate := date
			row.AttendanceDate = &rowDate
			changed = true
		}
		if row.RecordedAt == nil {
			rowRecordedAt := recordedAt
			row.RecordedAt = &rowRecordedAt
			changed = true
		}
		if !equalPtr(row.SessionTopic, topic) {
			row.SessionTopic = topic
			changed = true
		}
		if !equalPtr(row.SessionTime, timeLabel) {
			row.SessionTime = timeLabel
			changed = true
		}

		if !changed {
			continue
		}

		row.UpdatedAt = now
		if err := repo.UpdateAttendance(ctx, row); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		metrics.AttendanceReconciled.WithLabelValues(metrics.ActionUpdated).Inc()
	}

	return nil
}

func onDate(a *models.Attendance, date time.Time) bool {
	return a.AttendanceDate != nil && models.SameDate(*a.AttendanceDate, date)
}
