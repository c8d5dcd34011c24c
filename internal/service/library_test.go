package service_test

import (
	"fmt"
	"sync"
	"testing"

	"tutor-portal/api"
	"tutor-portal/internal/models"
	"tutor-portal/pkg/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(n int) *int { return &n }

func (s *suite) book(title string, total int) *api.BookResponse {
	resp, err := s.svc.CreateBook(s.ctx, &api.BookRequest{
		Title:      title,
		Status:     string(models.BookAvailable),
		TotalStock: total,
	})
	require.NoError(s.t, err)
	return resp
}

func (s *suite) borrow(bookID uuid.UUID, userID *uuid.UUID, name *string) (*api.LoanResponse, error) {
	return s.svc.BorrowBook(s.ctx, s.teacher.ID, &api.BorrowRequest{
		BookID:       bookID,
		UserID:       userID,
		BorrowerName: name,
		BorrowedAt:   "2025-03-09",
	})
}

func TestCreateBookStock(t *testing.T) {
	s := newSuite(t)

	b := s.book("Matematika Dasar", 3)
	assert.Equal(t, 3, b.AvailableStock)
	assert.Equal(t, string(models.BookAvailable), b.Status)

	_, err := s.svc.CreateBook(s.ctx, &api.BookRequest{
		Title:          "Fisika",
		Status:         string(models.BookAvailable),
		TotalStock:     2,
		AvailableStock: intp(5),
	})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	code := "BK-01"
	_, err = s.svc.CreateBook(s.ctx, &api.BookRequest{Code: &code, Title: "A", Status: "available", TotalStock: 1})
	require.NoError(t, err)
	_, err = s.svc.CreateBook(s.ctx, &api.BookRequest{Code: &code, Title: "B", Status: "available", TotalStock: 1})
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestBorrowAndReturnAdjustStock(t *testing.T) {
	s := newSuite(t)
	b := s.book("Matematika Dasar", 1)

	loan, err := s.borrow(b.ID, &s.parent.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, string(models.LoanBorrowed), loan.Status)
	require.NotNil(t, loan.Borrower.Name)
	assert.Equal(t, s.parent.Name, *loan.Borrower.Name)
	assert.Equal(t, "Matematika Dasar", loan.BookTitle)

	stored, err := s.store.GetBook(s.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AvailableStock)
	assert.Equal(t, models.BookBorrowed, stored.Status)

	// the last copy is out
	_, err = s.borrow(b.ID, nil, strp("Tamu"))
	assert.ErrorIs(t, err, response.ErrBadRequest)

	returned, err := s.svc.UpdateLoan(s.ctx, loan.ID, &api.LoanUpdateRequest{
		Status:     string(models.LoanReturned),
		ReturnedAt: strp("2025-03-12"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.LoanReturned), returned.Status)
	require.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, "2025-03-12", *returned.ReturnedAt)

	stored, err = s.store.GetBook(s.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AvailableStock)
	assert.Equal(t, models.BookAvailable, stored.Status)

	_, err = s.svc.UpdateLoan(s.ctx, loan.ID, &api.LoanUpdateRequest{Status: string(models.LoanReturned)})
	assert.ErrorIs(t, err, response.ErrBadRequest, "a closed loan cannot be returned twice")

	stored, err = s.store.GetBook(s.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AvailableStock)
}

func TestBorrowForUnknownUserLeavesStock(t *testing.T) {
	s := newSuite(t)
	b := s.book("Kimia", 2)

	missing := uuid.New()
	_, err := s.borrow(b.ID, &missing, nil)
	assert.ErrorIs(t, err, response.ErrNotFound)

	stored, err := s.store.GetBook(s.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.AvailableStock)

	loans, err := s.svc.ListLoans(s.ctx, api.LoanListQuery{})
	require.NoError(t, err)
	assert.Empty(t, loans.Loans)
}

func TestParallelBorrowNeverOverdrawsStock(t *testing.T) {
	s := newSuite(t)
	b := s.book("Biologi", 3)
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.svc.BorrowBook(s.ctx, s.teacher.ID, &api.BorrowRequest{
				BookID:       b.ID,
				BorrowerName: strp(fmt.Sprintf("Tamu %d", i)),
				BorrowedAt:   "2025-03-09",
			})
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, response.ErrBadRequest)
	}
	assert.Equal(t, 3, ok)

	stored, err := s.store.GetBook(s.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AvailableStock)
}

func TestOverdueLoanAndDelete(t *testing.T) {
	s := newSuite(t)
	b := s.book("Sejarah", 2)

	loan, err := s.svc.BorrowBook(s.ctx, s.teacher.ID, &api.BorrowRequest{
		BookID:       b.ID,
		BorrowerName: strp("Tamu"),
		BorrowedAt:   "2025-03-01",
		DueAt:        strp("2025-03-05"),
	})
	require.NoError(t, err)
	assert.True(t, loan.PastDue, "due date before today")

	overdue, err := s.svc.UpdateLoan(s.ctx, loan.ID, &api.LoanUpdateRequest{Status: string(models.LoanOverdue), Notes: strp("called parent")})
	require.NoError(t, err)
	assert.Equal(t, string(models.LoanOverdue), overdue.Status)

	list, err := s.svc.ListLoans(s.ctx, api.LoanListQuery{})
	require.NoError(t, err)
	assert.Equal(t, api.LoanStats{Overdue: 1}, list.Stats)

	// deleting a loan that still holds a copy puts it back
	require.NoError(t, s.svc.DeleteLoan(s.ctx, loan.ID))
	stored, err := s.store.GetBook(s.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.AvailableStock)

	list, err = s.svc.ListLoans(s.ctx, api.LoanListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list.Loans)

	_, err = s.svc.UpdateLoan(s.ctx, loan.ID, &api.LoanUpdateRequest{Status: string(models.LoanReturned)})
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestBorrowValidatesDates(t *testing.T) {
	s := newSuite(t)
	b := s.book("Geografi", 1)

	_, err := s.svc.BorrowBook(s.ctx, s.teacher.ID, &api.BorrowRequest{
		BookID:       b.ID,
		BorrowerName: strp("Tamu"),
		BorrowedAt:   "2025-03-09",
		DueAt:        strp("2025-03-01"),
	})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	_, err = s.svc.BorrowBook(s.ctx, s.teacher.ID, &api.BorrowRequest{
		BookID:       b.ID,
		BorrowerName: strp("Tamu"),
		BorrowedAt:   "yesterday",
	})
	assert.ErrorIs(t, err, response.ErrBadRequest)
}

func TestUpdateBookRespectsCopiesOnLoan(t *testing.T) {
	s := newSuite(t)
	b := s.book("Ekonomi", 2)

	_, err := s.borrow(b.ID, nil, strp("Tamu"))
	require.NoError(t, err)

	_, err = s.svc.UpdateBook(s.ctx, b.ID, &api.BookRequest{Title: "Ekonomi", Status: "available", TotalStock: 2, AvailableStock: intp(2)})
	assert.ErrorIs(t, err, response.ErrBadRequest)

	updated, err := s.svc.UpdateBook(s.ctx, b.ID, &api.BookRequest{Title: "Ekonomi Jilid 1", Status: "available", TotalStock: 4})
	require.NoError(t, err)
	assert.Equal(t, "Ekonomi Jilid 1", updated.Title)
	assert.Equal(t, 1, updated.AvailableStock)
	assert.Equal(t, 4, updated.TotalStock)

	list, err := s.svc.ListBooks(s.ctx, api.BookListQuery{Search: "jilid"})
	require.NoError(t, err)
	require.Len(t, list.Books, 1)
	assert.Equal(t, 1, list.Books[0].LoansCount)
	require.Len(t, list.Books[0].Borrowers, 1)
	assert.Equal(t, "Tamu", *list.Books[0].Borrowers[0].Name)

	require.NoError(t, s.svc.DeleteBook(s.ctx, b.ID))
	loans, err := s.svc.ListLoans(s.ctx, api.LoanListQuery{})
	require.NoError(t, err)
	assert.Empty(t, loans.Loans, "loans go with the book")
}
