package postgres

import (
	"context"
	"fmt"
	"time"

	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

// #### students ####

const studentColumns = `id, parent_id, student_code, name, education_level, status,
	date_of_birth, school_name, address, created_at, updated_at, deleted_at`

func scanStudent(row scanner) (models.Student, error) {
	var st models.Student
	err := row.Scan(
		&st.ID, &st.ParentID, &st.Code, &st.Name, &st.EducationLevel, &st.Status,
		&st.DateOfBirth, &st.SchoolName, &st.Address, &st.CreatedAt, &st.UpdatedAt, &st.DeletedAt,
	)
	return st, err
}

func (r repo) queryStudents(ctx context.Context, op, query string, args ...any) ([]models.Student, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r repo) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	const op = "storage.postgres.GetStudent"

	st, err := scanStudent(r.q.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &st, nil
}

func (r repo) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	const op = "storage.postgres.ListStudents"

	return r.queryStudents(ctx, op, `
		SELECT `+studentColumns+` FROM students
		WHERE ($1::uuid IS NULL OR parent_id = $1)
		  AND `+trashedClause(filter.Trashed)+`
		ORDER BY name, student_code`,
		filter.ParentID,
	)
}

func (r repo) ListStudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Student, error) {
	const op = "storage.postgres.ListStudentsByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	return r.queryStudents(ctx, op, `
		SELECT `+studentColumns+` FROM students
		WHERE id = ANY($1::uuid[])
		ORDER BY name, student_code`,
		uuidArray(ids),
	)
}

func (r repo) ListStudentCodes(ctx context.Context) ([]string, error) {
	const op = "storage.postgres.ListStudentCodes"

	rows, err := r.q.QueryContext(ctx, `SELECT student_code FROM students ORDER BY student_code`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r repo) CreateStudent(ctx context.Context, st *models.Student) error {
	const op = "storage.postgres.CreateStudent"

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO students (`+studentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		st.ID, st.ParentID, st.Code, st.Name, st.EducationLevel, st.Status,
		st.DateOfBirth, st.SchoolName, st.Address, st.CreatedAt, st.UpdatedAt, st.DeletedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (r repo) UpdateStudent(ctx context.Context, st *models.Student) error {
	const op = "storage.postgres.UpdateStudent"

	res, err := r.q.ExecContext(ctx, `
		UPDATE students
		SET parent_id=$2, student_code=$3, name=$4, education_level=$5, status=$6,
			date_of_birth=$7, school_name=$8, address=$9, updated_at=$10
		WHERE id=$1`,
		st.ID, st.ParentID, st.Code, st.Name, st.EducationLevel, st.Status,
		st.DateOfBirth, st.SchoolName, st.Address, st.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) SetStudentDeletedAt(ctx context.Context, id uuid.UUID, at *time.Time) error {
	const op = "storage.postgres.SetStudentDeletedAt"

	res, err := r.q.ExecContext(ctx, `UPDATE students SET deleted_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func trashedClause(mode models.TrashedMode) string {
	switch mode {
	case models.WithTrashed:
		return "TRUE"
	case models.OnlyTrashed:
		return "deleted_at IS NOT NULL"
	default:
		return "deleted_at IS NULL"
	}
}
