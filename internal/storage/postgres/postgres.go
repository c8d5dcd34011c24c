package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"tutor-portal/internal/service"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

var _ service.Store = (*Storage)(nil)

type Storage struct {
	repo

	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db, repo: repo{q: db}}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) WithTx(ctx context.Context, fn func(repo service.Repository) error) error {
	const op = "storage.postgres.WithTx"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}

	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	if err := fn(repo{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repo struct {
	q querier
}

type scanner interface {
	Scan(dest ...any) error
}

// mapError turns driver errors into the response sentinels the service
// understands.
func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	var sqlErr *pq.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrConflict, sqlErr.Message))
		case "23503":
			return fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrNotFound, sqlErr.Message))
		case "23514":
			return fmt.Errorf("%s: %w", op, response.WithDetail(response.ErrConflict, sqlErr.Message))
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// expectRow reports ErrNotFound when an UPDATE or DELETE matched nothing.
func expectRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return nil
}

func uuidArray(ids []uuid.UUID) any {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return pq.Array(out)
}
