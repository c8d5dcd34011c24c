package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NoteCategory string

const (
	CategoryBehavior      NoteCategory = "behavior"
	CategoryAcademic      NoteCategory = "academic"
	CategoryCommunication NoteCategory = "communication"
	CategoryGeneral       NoteCategory = "general"
)

type NoteVisibility string

const (
	VisibilityParent    NoteVisibility = "parent"
	VisibilityAdminOnly NoteVisibility = "admin_only"
)

type TeacherNote struct {
	ID              uuid.UUID      `db:"id"`
	StudentID       uuid.UUID      `db:"student_id"`
	ScheduleID      *uuid.UUID     `db:"schedule_id"`
	AttendanceID    *uuid.UUID     `db:"attendance_id"`
	TeacherID       uuid.UUID      `db:"teacher_id"`
	Title           string         `db:"title"`
	Note            string         `db:"note"`
	Category        NoteCategory   `db:"category"`
	Visibility      NoteVisibility `db:"visibility"`
	TagColor        *string        `db:"tag_color"`
	Sentiment       *string        `db:"sentiment"`
	IsFlagged       bool           `db:"is_flagged"`
	FollowUpActions *string        `db:"follow_up_actions"`
	Attachments     datatypes.JSON `db:"attachments"`
	RecordedAt      time.Time      `db:"recorded_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type NoteFilter struct {
	TeacherID  *uuid.UUID
	StudentID  *uuid.UUID
	Visibility *NoteVisibility
}
