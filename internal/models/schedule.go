package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Badge string

const (
	BadgeUpcoming  Badge = "Upcoming"
	BadgeOngoing   Badge = "Ongoing"
	BadgeCompleted Badge = "Completed"
	BadgeCanceled  Badge = "Canceled"
)

var Badges = []Badge{BadgeUpcoming, BadgeOngoing, BadgeCompleted, BadgeCanceled}

func (b Badge) Valid() bool {
	for _, v := range Badges {
		if v == b {
			return true
		}
	}
	return false
}

// Color is the display color shown next to the badge.
func (b Badge) Color() string {
	switch b {
	case BadgeOngoing:
		return "#10b981"
	case BadgeCompleted:
		return "#0ea5e9"
	case BadgeCanceled:
		return "#ef4444"
	default:
		return "#f97316"
	}
}

type Schedule struct {
	ID              uuid.UUID      `db:"id"`
	TeacherID       uuid.UUID      `db:"teacher_id"`
	StudentID       *uuid.UUID     `db:"student_id"`
	Subject         string         `db:"subject"`
	Topic           string         `db:"topic"`
	LearningFocus   *string        `db:"learning_focus"`
	Description     *string        `db:"description"`
	StartTime       *time.Time     `db:"start_time"`
	EndTime         *time.Time     `db:"end_time"`
	Location        *string        `db:"location"`
	MeetingURL      *string        `db:"meeting_url"`
	MaxParticipants *int           `db:"max_participants"`
	AttachmentsMeta datatypes.JSON `db:"attachments_meta"`
	StatusBadge     Badge          `db:"status_badge"`
	StatusLockedAt  *time.Time     `db:"status_locked_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	DeletedAt       *time.Time     `db:"deleted_at"`
}

func (s *Schedule) Deleted() bool {
	return s.DeletedAt != nil
}

func (s *Schedule) Locked() bool {
	return s.StatusLockedAt != nil
}

// ComputeBadge derives the badge from the time window. A locked schedule
// keeps its badge; when nothing matches the current badge is kept.
func (s *Schedule) ComputeBadge(now time.Time) Badge {
	current := s.StatusBadge
	if current == "" {
		current = BadgeUpcoming
	}

	if s.Locked() || s.StartTime == nil {
		return current
	}

	start := *s.StartTime

	switch {
	case start.After(now):
		return BadgeUpcoming
	case s.EndTime != nil && start.Before(now) && s.EndTime.After(now):
		return BadgeOngoing
	case s.EndTime == nil && start.Equal(now):
		return BadgeOngoing
	case s.EndTime != nil && s.EndTime.Before(now):
		return BadgeCompleted
	}

	return current
}

// ComputedStatus is the status used by listing filters and summaries. Unlike
// the stored badge it is evaluated at read time and ignores the lock, except
// for Canceled which always sticks.
func (s *Schedule) ComputedStatus(now time.Time) Badge {
	if s.StatusBadge == BadgeCanceled {
		return BadgeCanceled
	}

	if s.StartTime == nil {
		if s.StatusBadge == "" {
			return BadgeUpcoming
		}
		return s.StatusBadge
	}

	start := *s.StartTime
	if start.After(now) {
		return BadgeUpcoming
	}

	if s.EndTime != nil && !s.EndTime.Before(now) {
		return BadgeOngoing
	}
	if s.EndTime == nil && start.Equal(now) {
		return BadgeOngoing
	}

	return BadgeCompleted
}

type TrashedMode int

const (
	WithoutTrashed TrashedMode = iota
	WithTrashed
	OnlyTrashed
)

func (m TrashedMode) Match(deletedAt *time.Time) bool {
	switch m {
	case WithTrashed:
		return true
	case OnlyTrashed:
		return deletedAt != nil
	default:
		return deletedAt == nil
	}
}

type ScheduleFilter struct {
	TeacherID *uuid.UUID
	// StudentID matches schedules whose roster contains the student.
	StudentID *uuid.UUID
	Trashed   TrashedMode
}
