package models

import (
	"time"

	"github.com/google/uuid"
)

type NewsType string

const (
	NewsArticle  NewsType = "news"
	NewsActivity NewsType = "activity"
	NewsGallery  NewsType = "gallery"
)

type News struct {
	ID          uuid.UUID  `db:"id"`
	AdminID     uuid.UUID  `db:"admin_id"`
	Title       string     `db:"title"`
	Subtitle    *string    `db:"subtitle"`
	Slug        string     `db:"slug"`
	Excerpt     *string    `db:"excerpt"`
	Body        string     `db:"body"`
	Type        NewsType   `db:"type"`
	EventDate   *time.Time `db:"event_date"`
	IsPublished bool       `db:"is_published"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type NewsFilter struct {
	Trashed TrashedMode
}
