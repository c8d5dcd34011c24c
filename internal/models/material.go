package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MaterialStatusUploaded     = "Uploaded"
	MaterialVisibilityInternal = "internal"
)

type Material struct {
	ID          uuid.UUID      `db:"id"`
	ScheduleID  uuid.UUID      `db:"schedule_id"`
	UploadedBy  uuid.UUID      `db:"uploaded_by"`
	Title       string         `db:"title"`
	Description *string        `db:"description"`
	Status      string         `db:"status"`
	DownloadURL *string        `db:"download_url"`
	Visibility  string         `db:"visibility"`
	Labels      datatypes.JSON `db:"labels"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}
