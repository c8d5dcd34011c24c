package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
)

func (r repo) GetBook(_ context.Context, id uuid.UUID) (*models.Book, error) {
	const op = "storage.memory.GetBook"

	var out models.Book
	err := r.read(func(t *tables) error {
		b, ok := t.books[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r repo) ListBooks(_ context.Context) ([]models.Book, error) {
	var out []models.Book

	_ = r.read(func(t *tables) error {
		for _, b := range t.books {
			out = append(out, b)
		}
		return nil
	})

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r repo) CreateBook(_ context.Context, book *models.Book) error {
	const op = "storage.memory.CreateBook"

	return r.write(func(t *tables) error {
		if _, ok := t.books[book.ID]; ok {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if err := checkBook(t, book); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.books[book.ID] = *book
		return nil
	})
}

func (r repo) UpdateBook(_ context.Context, book *models.Book) error {
	const op = "storage.memory.UpdateBook"

	return r.write(func(t *tables) error {
		if _, ok := t.books[book.ID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		if err := checkBook(t, book); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.books[book.ID] = *book
		return nil
	})
}

func (r repo) DeleteBook(_ context.Context, id uuid.UUID) error {
	const op = "storage.memory.DeleteBook"

	return r.write(func(t *tables) error {
		if _, ok := t.books[id]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		for lid, l := range t.loans {
			if l.BookID == id {
				delete(t.loans, lid)
			}
		}
		delete(t.books, id)
		return nil
	})
}

// checkBook enforces the unique code and the stock bounds of the table.
func checkBook(t *tables, book *models.Book) error {
	if book.Code != nil {
		for _, other := range t.books {
			if other.ID != book.ID && other.Code != nil && *other.Code == *book.Code {
				return response.WithDetail(response.ErrConflict, "code is already taken")
			}
		}
	}

	if book.AvailableStock < 0 || book.AvailableStock > book.TotalStock {
		return response.WithDetail(response.ErrConflict, "available_stock is out of range")
	}

	return nil
}

func (r repo) GetLoan(_ context.Context, id uuid.UUID) (*models.Loan, error) {
	const op = "storage.memory.GetLoan"

	var out models.Loan
	err := r.read(func(t *tables) error {
		l, ok := t.loans[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r repo) ListLoans(_ context.Context, filter models.LoanFilter) ([]models.Loan, error) {
	var out []models.Loan

	_ = r.read(func(t *tables) error {
		for _, l := range t.loans {
			if l.DeletedAt != nil {
				continue
			}
			if filter.Status != nil && l.Status != *filter.Status {
				continue
			}
			if filter.BookID != nil && l.BookID != *filter.BookID {
				continue
			}
			if filter.Active && !l.Active() {
				continue
			}
			out = append(out, l)
		}
		return nil
	})

	// newest first
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].BorrowedAt.Equal(out[j].BorrowedAt) {
			return out[i].BorrowedAt.After(out[j].BorrowedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r repo) CreateLoan(_ context.Context, loan *models.Loan) error {
	const op = "storage.memory.CreateLoan"

	return r.write(func(t *tables) error {
		if _, ok := t.loans[loan.ID]; ok {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if err := checkLoan(t, loan); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.loans[loan.ID] = *loan
		return nil
	})
}

func (r repo) UpdateLoan(_ context.Context, loan *models.Loan) error {
	const op = "storage.memory.UpdateLoan"

	return r.write(func(t *tables) error {
		if _, ok := t.loans[loan.ID]; !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		if err := checkLoan(t, loan); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		t.loans[loan.ID] = *loan
		return nil
	})
}

func (r repo) SetLoanDeletedAt(_ context.Context, id uuid.UUID, at *time.Time) error {
	const op = "storage.memory.SetLoanDeletedAt"

	return r.write(func(t *tables) error {
		l, ok := t.loans[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		l.DeletedAt = at
		t.loans[id] = l
		return nil
	})
}

func checkLoan(t *tables, loan *models.Loan) error {
	if _, ok := t.books[loan.BookID]; !ok {
		return response.WithDetail(response.ErrNotFound, "book not found")
	}
	for _, ref := range []*uuid.UUID{loan.UserID, loan.IssuedBy} {
		if ref == nil {
			continue
		}
		if _, ok := t.users[*ref]; !ok {
			return response.WithDetail(response.ErrNotFound, "user not found")
		}
	}
	return nil
}
