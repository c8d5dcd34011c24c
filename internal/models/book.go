package models

import (
	"time"

	"github.com/google/uuid"
)

type BookStatus string

const (
	BookAvailable   BookStatus = "available"
	BookBorrowed    BookStatus = "borrowed"
	BookMaintenance BookStatus = "maintenance"
	BookLost        BookStatus = "lost"
)

var BookStatuses = []BookStatus{BookAvailable, BookBorrowed, BookMaintenance, BookLost}

type Book struct {
	ID             uuid.UUID  `db:"id"`
	Code           *string    `db:"code"`
	Title          string     `db:"title"`
	Author         *string    `db:"author"`
	Category       *string    `db:"category"`
	Status         BookStatus `db:"status"`
	PublishedYear  *int       `db:"published_year"`
	TotalPages     *int       `db:"total_pages"`
	TotalStock     int        `db:"total_stock"`
	AvailableStock int        `db:"available_stock"`
	Description    *string    `db:"description"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Lendable reports whether one more copy can go out right now.
func (b *Book) Lendable() bool {
	return b.Status == BookAvailable && b.AvailableStock > 0
}
