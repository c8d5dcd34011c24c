package postgres

import (
	"context"
	"errors"
	"fmt"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const userColumns = `id, name, email, phone, role, password_hash, is_active, created_at, updated_at`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r repo) CreateUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.CreateUser"

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Name, user.Email, user.Phone, user.Role,
		user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (r repo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.postgres.GetUser"

	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &u, nil
}

func (r repo) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	const op = "storage.postgres.ListUsers"

	var role *string
	if filter.Role != nil {
		v := string(*filter.Role)
		role = &v
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE ($1::text IS NULL OR role = $1)
		ORDER BY name, email`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r repo) UpdateUser(ctx context.Context, u *models.User) error {
	const op = "storage.postgres.UpdateUser"

	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET name=$2, email=$3, phone=$4, role=$5, password_hash=$6, is_active=$7, updated_at=$8
		WHERE id=$1`,
		u.ID, u.Name, u.Email, u.Phone, u.Role, u.PasswordHash, u.IsActive, u.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteUser"

	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		// on DELETE a foreign key failure means the row is still owned
		var sqlErr *pq.Error
		if errors.As(err, &sqlErr) && (sqlErr.Code == "23503" || sqlErr.Code == "23001") {
			return fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrConflict, "user is still referenced by other records"))
		}
		return mapError(op, err)
	}

	return expectRow(op, res)
}
