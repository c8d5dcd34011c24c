package postgres

import (
	"context"
	"fmt"
	"time"

	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

const scheduleColumns = `id, teacher_id, student_id, subject, topic, learning_focus, description,
	start_time, end_time, location, meeting_url, max_participants, attachments_meta,
	status_badge, status_locked_at, created_at, updated_at, deleted_at`

func scanSchedule(row scanner) (models.Schedule, error) {
	var sch models.Schedule
	var meta []byte

	err := row.Scan(
		&sch.ID, &sch.TeacherID, &sch.StudentID, &sch.Subject, &sch.Topic, &sch.LearningFocus, &sch.Description,
		&sch.StartTime, &sch.EndTime, &sch.Location, &sch.MeetingURL, &sch.MaxParticipants, &meta,
		&sch.StatusBadge, &sch.StatusLockedAt, &sch.CreatedAt, &sch.UpdatedAt, &sch.DeletedAt,
	)
	sch.AttachmentsMeta = meta

	return sch, err
}

func (r repo) querySchedules(ctx context.Context, op, query string, args ...any) ([]models.Schedule, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, sch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r repo) CreateSchedule(ctx context.Context, sch *models.Schedule) error {
	const op = "storage.postgres.CreateSchedule"

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO schedules (`+scheduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		sch.ID, sch.TeacherID, sch.StudentID, sch.Subject, sch.Topic, sch.LearningFocus, sch.Description,
		sch.StartTime, sch.EndTime, sch.Location, sch.MeetingURL, sch.MaxParticipants, sch.AttachmentsMeta,
		sch.StatusBadge, sch.StatusLockedAt, sch.CreatedAt, sch.UpdatedAt, sch.DeletedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (r repo) UpdateSchedule(ctx context.Context, sch *models.Schedule) error {
	const op = "storage.postgres.UpdateSchedule"

	res, err := r.q.ExecContext(ctx, `
		UPDATE schedules
		SET student_id=$2, subject=$3, topic=$4, learning_focus=$5, description=$6,
			start_time=$7, end_time=$8, location=$9, meeting_url=$10, max_participants=$11,
			attachments_meta=$12, status_badge=$13, status_locked_at=$14, updated_at=$15
		WHERE id=$1`,
		sch.ID, sch.StudentID, sch.Subject, sch.Topic, sch.LearningFocus, sch.Description,
		sch.StartTime, sch.EndTime, sch.Location, sch.MeetingURL, sch.MaxParticipants,
		sch.AttachmentsMeta, sch.StatusBadge, sch.StatusLockedAt, sch.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) GetSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	const op = "storage.postgres.GetSchedule"

	sch, err := scanSchedule(r.q.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &sch, nil
}

func (r repo) ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	const op = "storage.postgres.ListSchedules"

	return r.querySchedules(ctx, op, `
		SELECT `+scheduleColumns+` FROM schedules
		WHERE ($1::uuid IS NULL OR teacher_id = $1)
		  AND ($2::uuid IS NULL OR EXISTS (
				SELECT 1 FROM schedule_students ss
				WHERE ss.schedule_id = schedules.id AND ss.student_id = $2))
		  AND `+trashedClause(filter.Trashed)+`
		ORDER BY start_time NULLS LAST, created_at, id`,
		filter.TeacherID, filter.StudentID,
	)
}

func (r repo) ListSchedulesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Schedule, error) {
	const op = "storage.postgres.ListSchedulesByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	return r.querySchedules(ctx, op, `
		SELECT `+scheduleColumns+` FROM schedules
		WHERE id = ANY($1::uuid[])
		ORDER BY start_time NULLS LAST, created_at, id`,
		uuidArray(ids),
	)
}

func (r repo) SetScheduleDeletedAt(ctx context.Context, id uuid.UUID, at *time.Time) error {
	const op = "storage.postgres.SetScheduleDeletedAt"

	res, err := r.q.ExecContext(ctx, `UPDATE schedules SET deleted_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) SetScheduleBadge(ctx context.Context, id uuid.UUID, badge models.Badge) error {
	const op = "storage.postgres.SetScheduleBadge"

	res, err := r.q.ExecContext(ctx, `UPDATE schedules SET status_badge=$2 WHERE id=$1`, id, badge)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

// #### roster ####

// SyncRoster replaces the roster with studentIDs, keeping their order.
func (r repo) SyncRoster(ctx context.Context, scheduleID uuid.UUID, studentIDs []uuid.UUID) error {
	const op = "storage.postgres.SyncRoster"

	_, err := r.q.ExecContext(ctx, `
		DELETE FROM schedule_students
		WHERE schedule_id = $1 AND NOT (student_id = ANY($2::uuid[]))`,
		scheduleID, uuidArray(studentIDs),
	)
	if err != nil {
		return mapError(op, err)
	}

	for i, id := range studentIDs {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO schedule_students (schedule_id, student_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (schedule_id, student_id) DO UPDATE SET position = EXCLUDED.position`,
			scheduleID, id, i,
		)
		if err != nil {
			return mapError(op, err)
		}
	}

	return nil
}

func (r repo) Rosters(ctx context.Context, scheduleIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	const op = "storage.postgres.Rosters"

	out := make(map[uuid.UUID][]uuid.UUID, len(scheduleIDs))
	if len(scheduleIDs) == 0 {
		return out, nil
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT schedule_id, student_id FROM schedule_students
		WHERE schedule_id = ANY($1::uuid[])
		ORDER BY schedule_id, position`,
		uuidArray(scheduleIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var scheduleID, studentID uuid.UUID
		if err := rows.Scan(&scheduleID, &studentID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out[scheduleID] = append(out[scheduleID], studentID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
