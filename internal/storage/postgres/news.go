package postgres

import (
	"context"
	"fmt"
	"time"

	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

const newsColumns = `id, admin_id, title, subtitle, slug, excerpt, body, type, event_date,
	is_published, created_at, updated_at, deleted_at`

func scanNews(row scanner) (models.News, error) {
	var n models.News
	err := row.Scan(
		&n.ID, &n.AdminID, &n.Title, &n.Subtitle, &n.Slug, &n.Excerpt, &n.Body, &n.Type, &n.EventDate,
		&n.IsPublished, &n.CreatedAt, &n.UpdatedAt, &n.DeletedAt,
	)
	return n, err
}

func (r repo) GetNews(ctx context.Context, id uuid.UUID) (*models.News, error) {
	const op = "storage.postgres.GetNews"

	n, err := scanNews(r.q.QueryRowContext(ctx, `SELECT `+newsColumns+` FROM news WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &n, nil
}

func (r repo) ListNews(ctx context.Context, filter models.NewsFilter) ([]models.News, error) {
	const op = "storage.postgres.ListNews"

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+newsColumns+` FROM news
		WHERE `+trashedClause(filter.Trashed)+`
		ORDER BY event_date DESC NULLS LAST, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.News
	for rows.Next() {
		n, err := scanNews(rows)
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

func (r repo) CreateNews(ctx context.Context, n *models.News) error {
	const op = "storage.postgres.CreateNews"

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO news (`+newsColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		n.ID, n.AdminID, n.Title, n.Subtitle, n.Slug, n.Excerpt, n.Body, n.Type, dateArg(n.EventDate),
		n.IsPublished, n.CreatedAt, n.UpdatedAt, n.DeletedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (r repo) UpdateNews(ctx context.Context, n *models.News) error {
	const op = "storage.postgres.UpdateNews"

	res, err := r.q.ExecContext(ctx, `
		UPDATE news
		SET title=$2, subtitle=$3, excerpt=$4, body=$5, type=$6, event_date=$7,
			is_published=$8, updated_at=$9
		WHERE id=$1`,
		n.ID, n.Title, n.Subtitle, n.Excerpt, n.Body, n.Type, dateArg(n.EventDate),
		n.IsPublished, n.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) SetNewsDeletedAt(ctx context.Context, id uuid.UUID, at *time.Time) error {
	const op = "storage.postgres.SetNewsDeletedAt"

	res, err := r.q.ExecContext(ctx, `UPDATE news SET deleted_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}
