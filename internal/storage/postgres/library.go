package postgres

import (
	"context"
	"fmt"
	"time"

	"tutor-portal/internal/models"

	"github.com/google/uuid"
)

// #### books ####

const bookColumns = `id, code, title, author, category, status, published_year, total_pages,
	total_stock, available_stock, description, created_at, updated_at`

func scanBook(row scanner) (models.Book, error) {
	var b models.Book
	err := row.Scan(
		&b.ID, &b.Code, &b.Title, &b.Author, &b.Category, &b.Status, &b.PublishedYear, &b.TotalPages,
		&b.TotalStock, &b.AvailableStock, &b.Description, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r repo) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	const op = "storage.postgres.GetBook"

	// inside WithTx the row stays locked until commit, so two borrows cannot
	// both take the last copy
	b, err := scanBook(r.q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &b, nil
}

func (r repo) ListBooks(ctx context.Context) ([]models.Book, error) {
	const op = "storage.postgres.ListBooks"

	rows, err := r.q.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r repo) CreateBook(ctx context.Context, b *models.Book) error {
	const op = "storage.postgres.CreateBook"

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.Code, b.Title, b.Author, b.Category, b.Status, b.PublishedYear, b.TotalPages,
		b.TotalStock, b.AvailableStock, b.Description, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (r repo) UpdateBook(ctx context.Context, b *models.Book) error {
	const op = "storage.postgres.UpdateBook"

	res, err := r.q.ExecContext(ctx, `
		UPDATE books
		SET code=$2, title=$3, author=$4, category=$5, status=$6, published_year=$7, total_pages=$8,
			total_stock=$9, available_stock=$10, description=$11, updated_at=$12
		WHERE id=$1`,
		b.ID, b.Code, b.Title, b.Author, b.Category, b.Status, b.PublishedYear, b.TotalPages,
		b.TotalStock, b.AvailableStock, b.Description, b.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) DeleteBook(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteBook"

	res, err := r.q.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

// #### loans ####

const loanColumns = `id, book_id, user_id, borrower_name, borrower_email, issued_by,
	borrowed_at, due_at, returned_at, status, notes, created_at, updated_at, deleted_at`

func scanLoan(row scanner) (models.Loan, error) {
	var l models.Loan
	err := row.Scan(
		&l.ID, &l.BookID, &l.UserID, &l.BorrowerName, &l.BorrowerEmail, &l.IssuedBy,
		&l.BorrowedAt, &l.DueAt, &l.ReturnedAt, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
	)
	return l, err
}

func (r repo) GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	const op = "storage.postgres.GetLoan"

	l, err := scanLoan(r.q.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(op, err)
	}

	return &l, nil
}

func (r repo) ListLoans(ctx context.Context, filter models.LoanFilter) ([]models.Loan, error) {
	const op = "storage.postgres.ListLoans"

	var status *string
	if filter.Status != nil {
		v := string(*filter.Status)
		status = &v
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE deleted_at IS NULL
		  AND ($1::text IS NULL OR status = $1)
		  AND ($2::uuid IS NULL OR book_id = $2)
		  AND (NOT $3 OR returned_at IS NULL)
		ORDER BY borrowed_at DESC, created_at DESC`,
		status, filter.BookID, filter.Active,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r repo) CreateLoan(ctx context.Context, l *models.Loan) error {
	const op = "storage.postgres.CreateLoan"

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		l.ID, l.BookID, l.UserID, l.BorrowerName, l.BorrowerEmail, l.IssuedBy,
		dateArg(&l.BorrowedAt), dateArg(l.DueAt), dateArg(l.ReturnedAt), l.Status, l.Notes,
		l.CreatedAt, l.UpdatedAt, l.DeletedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (r repo) UpdateLoan(ctx context.Context, l *models.Loan) error {
	const op = "storage.postgres.UpdateLoan"

	res, err := r.q.ExecContext(ctx, `
		UPDATE loans
		SET user_id=$2, borrower_name=$3, borrower_email=$4, due_at=$5, returned_at=$6,
			status=$7, notes=$8, updated_at=$9
		WHERE id=$1`,
		l.ID, l.UserID, l.BorrowerName, l.BorrowerEmail, dateArg(l.DueAt), dateArg(l.ReturnedAt),
		l.Status, l.Notes, l.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}

func (r repo) SetLoanDeletedAt(ctx context.Context, id uuid.UUID, at *time.Time) error {
	const op = "storage.postgres.SetLoanDeletedAt"

	res, err := r.q.ExecContext(ctx, `UPDATE loans SET deleted_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return mapError(op, err)
	}

	return expectRow(op, res)
}
