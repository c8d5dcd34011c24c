package postgres

import (
	"context"
	"fmt"
	"time"

	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

const attendanceColumns = `id, student_id, schedule_id, recorded_by, attendance_date, recorded_at,
	status, session_topic, session_time, notes, input_channel, requires_follow_up, meta,
	created_at, updated_at`

func scanAttendance(row scanner) (models.Attendance, error) {
	var a models.Attendance
	var meta []byte

	err := row.Scan(
		&a.ID, &a.StudentID, &a.ScheduleID, &a.RecordedBy, &a.AttendanceDate, &a.RecordedAt,
		&a.Status, &a.SessionTopic, &a.SessionTime, &a.Notes, &a.InputChannel, &a.RequiresFollowUp, &meta,
		&a.CreatedAt, &a.UpdatedAt,
	)
	a.Meta = meta

	return a, err
}

func (r repo) GetAttendance(ctx context.Context, id uuid.UUID) (*models.Attendance, error) {
	const op = "storage.postgres.GetAttendance"

	a, err := scanAttendance(r.q.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &a, nil
}

func (r repo) FindAttendance(ctx context.Context, studentID, scheduleID uuid.UUID, date time.Time) (*models.Attendance, error) {
	const op = "storage.postgres.FindAttendance"

	a, err := scanAttendance(r.q.QueryRowContext(ctx, `
		SELECT `+attendanceColumns+` FROM attendance
		WHERE student_id=$1 AND schedule_id=$2 AND attendance_date=$3::date`,
		studentID, scheduleID, date.Format("2006-01-02"),
	))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &a, nil
}

func (r repo) ListAttendance(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	const op = "storage.postgres.ListAttendance"

	var date *string
	if filter.Date != nil {
		d := filter.Date.Format("2006-01-02")
		date = &d
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+attendanceColumns+` FROM attendance a
		WHERE ($1::uuid IS NULL OR a.recorded_by = $1 OR EXISTS (
				SELECT 1 FROM schedules s WHERE s.id = a.schedule_id AND s.teacher_id = $1))
		  AND ($2::uuid IS NULL OR a.student_id = $2)
		  AND ($3::uuid IS NULL OR a.schedule_id = $3)
		  AND ($4::date IS NULL OR a.attendance_date = $4::date)
		ORDER BY a.attendance_date DESC NULLS LAST, a.recorded_at DESC NULLS LAST, a.created_at DESC, a.id`,
		filter.TeacherID, filter.StudentID, filter.ScheduleID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r repo) CreateAttendance(ctx context.Context, a *models.Attendance) error {
	const op = "storage.postgres.CreateAttendance"

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID, a.StudentID, a.ScheduleID, a.RecordedBy, dateArg(a.AttendanceDate), a.RecordedAt,
		a.Status, a.SessionTopic, a.SessionTime, a.Notes, a.InputChannel, a.RequiresFollowUp, a.Meta,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (r repo) UpdateAttendance(ctx context.Context, a *models.Attendance) error {
	const op = "storage.postgres.UpdateAttendance"

	res, err := r.q.ExecContext(ctx, `
		UPDATE attendance
		SET student_id=$2, schedule_id=$3, recorded_by=$4, attendance_date=$5, recorded_at=$6,
			status=$7, session_topic=$8, session_time=$9, notes=$10, input_channel=$11,
			requires_follow_up=$12, meta=$13, updated_at=$14
		WHERE id=$1`,
		a.ID, a.StudentID, a.ScheduleID, a.RecordedBy, dateArg(a.AttendanceDate), a.RecordedAt,
		a.Status, a.SessionTopic, a.SessionTime, a.Notes, a.InputChannel,
		a.RequiresFollowUp, a.Meta, a.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) DeleteAttendance(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteAttendance"

	res, err := r.q.ExecContext(ctx, `DELETE FROM attendance WHERE id=$1`, id)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) DeleteScheduleAttendance(ctx context.Context, scheduleID uuid.UUID) (int64, error) {
	const op = "storage.postgres.DeleteScheduleAttendance"

	res, err := r.q.ExecContext(ctx, `DELETE FROM attendance WHERE schedule_id=$1`, scheduleID)
	if err != nil {
		return 0, mapError(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// dateArg sends a calendar date as text so the session timezone cannot shift
// it.
func dateArg(t *time.Time) *string {
	if t == nil {
		return nil
	}
	d := t.Format("2006-01-02")
	return &d
}
