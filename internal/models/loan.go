package models

import (
	"time"

	"github.com/google/uuid"
)

type LoanStatus string

const (
	LoanBorrowed LoanStatus = "borrowed"
	LoanReturned LoanStatus = "returned"
	LoanOverdue  LoanStatus = "overdue"
)

type Loan struct {
	ID            uuid.UUID  `db:"id"`
	BookID        uuid.UUID  `db:"book_id"`
	UserID        *uuid.UUID `db:"user_id"`
	BorrowerName  *string    `db:"borrower_name"`
	BorrowerEmail *string    `db:"borrower_email"`
	IssuedBy      *uuid.UUID `db:"issued_by"`
	BorrowedAt    time.Time  `db:"borrowed_at"`
	DueAt         *time.Time `db:"due_at"`
	ReturnedAt    *time.Time `db:"returned_at"`
	Status        LoanStatus `db:"status"`
	Notes         *string    `db:"notes"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

// Active loans still hold a copy of the book.
func (l *Loan) Active() bool {
	return l.ReturnedAt == nil
}

type LoanFilter struct {
	Status *LoanStatus
	BookID *uuid.UUID
	Active bool
}
