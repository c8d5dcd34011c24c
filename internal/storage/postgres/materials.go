package postgres

import (
	"context"
	"fmt"

	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

const materialColumns = `id, schedule_id, uploaded_by, title, description, status, download_url,
	visibility, labels, created_at, updated_at`

func scanMaterial(row scanner) (models.Material, error) {
	var m models.Material
	var labels []byte

	err := row.Scan(
		&m.ID, &m.ScheduleID, &m.UploadedBy, &m.Title, &m.Description, &m.Status, &m.DownloadURL,
		&m.Visibility, &labels, &m.CreatedAt, &m.UpdatedAt,
	)
	m.Labels = labels

	return m, err
}

func (r repo) GetMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	const op = "storage.postgres.GetMaterial"

	m, err := scanMaterial(r.q.QueryRowContext(ctx, `SELECT `+materialColumns+` FROM schedule_materials WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &m, nil
}

func (r repo) ListMaterials(ctx context.Context, scheduleIDs []uuid.UUID) ([]models.Material, error) {
	const op = "storage.postgres.ListMaterials"

	if len(scheduleIDs) == 0 {
		return nil, nil
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+materialColumns+` FROM schedule_materials
		WHERE schedule_id = ANY($1::uuid[])
		ORDER BY created_at, id`,
		uuidArray(scheduleIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r repo) CreateMaterial(ctx context.Context, m *models.Material) error {
	const op = "storage.postgres.CreateMaterial"

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO schedule_materials (`+materialColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.ScheduleID, m.UploadedBy, m.Title, m.Description, m.Status, m.DownloadURL,
		m.Visibility, m.Labels, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (r repo) UpdateMaterial(ctx context.Context, m *models.Material) error {
	const op = "storage.postgres.UpdateMaterial"

	res, err := r.q.ExecContext(ctx, `
		UPDATE schedule_materials
		SET title=$2, description=$3, status=$4, download_url=$5, visibility=$6, labels=$7, updated_at=$8
		WHERE id=$1`,
		m.ID, m.Title, m.Description, m.Status, m.DownloadURL, m.Visibility, m.Labels, m.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteMaterial"

	res, err := r.q.ExecContext(ctx, `DELETE FROM schedule_materials WHERE id=$1`, id)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}
