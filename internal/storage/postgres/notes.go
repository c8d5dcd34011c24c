package postgres

import (
	"context"
	"fmt"

	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

const noteColumns = `id, student_id, schedule_id, attendance_id, teacher_id, title, note, category,
	visibility, tag_color, sentiment, is_flagged, follow_up_actions, attachments, recorded_at,
	created_at, updated_at`

func scanNote(row scanner) (models.TeacherNote, error) {
	var n models.TeacherNote
	var attachments []byte

	err := row.Scan(
		&n.ID, &n.StudentID, &n.ScheduleID, &n.AttendanceID, &n.TeacherID, &n.Title, &n.Note, &n.Category,
		&n.Visibility, &n.TagColor, &n.Sentiment, &n.IsFlagged, &n.FollowUpActions, &attachments, &n.RecordedAt,
		&n.CreatedAt, &n.UpdatedAt,
	)
	n.Attachments = attachments

	return n, err
}

func (r repo) GetNote(ctx context.Context, id uuid.UUID) (*models.TeacherNote, error) {
	const op = "storage.postgres.GetNote"

	n, err := scanNote(r.q.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM teacher_notes WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &n, nil
}

func (r repo) GetNoteByAttendance(ctx context.Context, attendanceID uuid.UUID) (*models.TeacherNote, error) {
	const op = "storage.postgres.GetNoteByAttendance"

	n, err := scanNote(r.q.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM teacher_notes WHERE attendance_id=$1`, attendanceID))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &n, nil
}

func (r repo) ListNotes(ctx context.Context, filter models.NoteFilter) ([]models.TeacherNote, error) {
	const op = "storage.postgres.ListNotes"

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM teacher_notes
		WHERE ($1::uuid IS NULL OR teacher_id = $1)
		  AND ($2::uuid IS NULL OR student_id = $2)
		  AND ($3::text IS NULL OR visibility = $3)
		ORDER BY recorded_at DESC, created_at DESC, id`,
		filter.TeacherID, filter.StudentID, filter.Visibility,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.TeacherNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r repo) CreateNote(ctx context.Context, n *models.TeacherNote) error {
	const op = "storage.postgres.CreateNote"

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO teacher_notes (`+noteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		n.ID, n.StudentID, n.ScheduleID, n.AttendanceID, n.TeacherID, n.Title, n.Note, n.Category,
		n.Visibility, n.TagColor, n.Sentiment, n.IsFlagged, n.FollowUpActions, n.Attachments, n.RecordedAt,
		n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (r repo) UpdateNote(ctx context.Context, n *models.TeacherNote) error {
	const op = "storage.postgres.UpdateNote"

	res, err := r.q.ExecContext(ctx, `
		UPDATE teacher_notes
		SET student_id=$2, schedule_id=$3, attendance_id=$4, teacher_id=$5, title=$6, note=$7,
			category=$8, visibility=$9, tag_color=$10, sentiment=$11, is_flagged=$12,
			follow_up_actions=$13, attachments=$14, recorded_at=$15, updated_at=$16
		WHERE id=$1`,
		n.ID, n.StudentID, n.ScheduleID, n.AttendanceID, n.TeacherID, n.Title, n.Note,
		n.Category, n.Visibility, n.TagColor, n.Sentiment, n.IsFlagged,
		n.FollowUpActions, n.Attachments, n.RecordedAt, n.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) DeleteNote(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteNote"

	res, err := r.q.ExecContext(ctx, `DELETE FROM teacher_notes WHERE id=$1`, id)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) DeleteAttendanceNote(ctx context.Context, attendanceID uuid.UUID) (int64, error) {
	const op = "storage.postgres.DeleteAttendanceNote"

	res, err := r.q.ExecContext(ctx, `DELETE FROM teacher_notes WHERE attendance_id=$1`, attendanceID)
	if err != nil {
		return 0, mapError(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
